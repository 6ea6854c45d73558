package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CatalogListingKey returns the cache key for a named public class listing
// (e.g. "approved", "popular", "latest").
func (r *CacheKeyStruct) CatalogListingKey(listing string) string {
	return fmt.Sprintf("catalog:listing:%s", listing)
}

// CatalogListingPattern matches every cached class listing.
func (r *CacheKeyStruct) CatalogListingPattern() string {
	return "catalog:listing:*"
}

// CatalogGenerationKey counts catalog invalidations. A listing read under an
// older generation is never written back.
func (r *CacheKeyStruct) CatalogGenerationKey() string {
	return "catalog:generation"
}

var CacheKey = NewCacheKeyStruct()
