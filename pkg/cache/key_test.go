package cache

import (
	"net/url"
	"testing"
)

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "category tree",
			key:  CacheKey{Endpoint: "/categories/v1/open/categories"},
			want: "tm:categories/v1/open/categories",
		},
		{
			name: "category tree with language",
			key:  CacheKey{Endpoint: "/categories/v1/open/categories", Language: "EN"},
			want: "tm:categories/v1/open/categories:lang=en",
		},
		{
			name: "query params are sorted",
			key: CacheKey{
				Endpoint: "/categories/v1/open/categories/",
				QueryParams: url.Values{
					"z": []string{"last"},
					"a": []string{"first"},
				},
				Language: "en",
			},
			want: "tm:categories/v1/open/categories:a=first:z=last:lang=en",
		},
		{
			name: "empty endpoint",
			key:  CacheKey{},
			want: "tm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("CacheKey.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheKey_Determinism(t *testing.T) {
	key := CacheKey{
		Endpoint: "/categories/v1/open/categories",
		QueryParams: url.Values{
			"b": []string{"2"},
			"a": []string{"1"},
			"c": []string{"3"},
		},
		Language: "en",
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Fatalf("iteration %d: %v, want %v (not deterministic)", i, got, first)
		}
	}
}

func TestCacheKey_LanguageSeparatesEntries(t *testing.T) {
	en := CacheKey{Endpoint: "/categories/v1/open/categories", Language: "en"}
	ru := CacheKey{Endpoint: "/categories/v1/open/categories", Language: "ru"}

	if en.String() == ru.String() {
		t.Errorf("keys for different languages collide: %s", en.String())
	}
}
