package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every Redis key written by the cache.
const KeyPrefix = "tm"

// CacheKey identifies a cached marketplace response.
type CacheKey struct {
	// Endpoint is the request path, e.g. "/categories/v1/open/categories".
	Endpoint string

	QueryParams url.Values

	// Language is the Accept-Language the response was negotiated for.
	Language string
}

// String generates a deterministic key.
//
//	tm:categories/v1/open/categories:lang=en
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	if endpoint := strings.Trim(k.Endpoint, "/"); endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	if k.Language != "" {
		parts = append(parts, "lang="+strings.ToLower(k.Language))
	}

	return strings.Join(parts, ":")
}
