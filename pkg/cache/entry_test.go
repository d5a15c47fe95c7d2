package cache

import (
	"testing"
	"time"
)

func TestCacheEntry_Expiry(t *testing.T) {
	tests := []struct {
		name        string
		expires     time.Time
		wantExpired bool
		wantMinTTL  time.Duration
		wantMaxTTL  time.Duration
	}{
		{
			name:        "one hour remaining",
			expires:     time.Now().Add(time.Hour),
			wantExpired: false,
			wantMinTTL:  59 * time.Minute,
			wantMaxTTL:  61 * time.Minute,
		},
		{
			name:        "expired an hour ago",
			expires:     time.Now().Add(-time.Hour),
			wantExpired: true,
		},
		{
			name:        "zero expiry",
			expires:     time.Time{},
			wantExpired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{Expires: tt.expires}

			if got := entry.IsExpired(); got != tt.wantExpired {
				t.Errorf("IsExpired() = %v, want %v", got, tt.wantExpired)
			}

			ttl := entry.TTL()
			if ttl < tt.wantMinTTL || ttl > tt.wantMaxTTL {
				t.Errorf("TTL() = %v, want between %v and %v", ttl, tt.wantMinTTL, tt.wantMaxTTL)
			}
		})
	}
}
