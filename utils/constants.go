// File: utils/constants.go
package utils

import "time"

// DraftKeyPrefix is the prefix used for Redis booking-draft keys.
const DraftKeyPrefix = "draft:"

// CatalogKeyPrefix is the prefix used for Redis catalogue cache keys.
const CatalogKeyPrefix = "catalog:"

// CatalogCacheTTL is the time-to-live for catalogue cache entries.
const CatalogCacheTTL = 10 * time.Minute

// AuthTokenTTL is the lifetime of issued customer session tokens.
const AuthTokenTTL = 72 * time.Hour
