package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Idempotency constants
const (
	// IdempotencyKeyHeader carries the client-supplied idempotency key
	IdempotencyKeyHeader = "X-Idempotency-Key"

	// IdempotencyCacheTTL bounds how long replayed responses stay in Redis
	IdempotencyCacheTTL = 24 * time.Hour

	// IdempotencyLockTTL bounds how long a single detection pass may hold the key lock
	IdempotencyLockTTL = 30 * time.Second
)

// Conflict summary cache constants
const (
	// ConflictSummaryCacheKey is the Redis key prefix for the active-conflict summary
	ConflictSummaryCacheKey = "conflicts:summary"

	// ConflictSummaryCacheTTL bounds staleness of the cached summary
	ConflictSummaryCacheTTL = time.Minute
)

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Request-scoped context keys for observability
const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
	TimeoutKey   ContextKey = "timeout"
)
