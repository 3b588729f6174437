// Package services provides external service integrations and technical concerns like tokens and caching
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/repository"
	"github.com/sponsorly/branddesk/utils"
	"gorm.io/gorm"
)

// Idempotency guard error constants
var (
	ErrReplayInProgress = errors.New("an identical request is still in progress")
)

// IdempotencyGuard serializes retried mutations behind a client-supplied
// key. The first run executes the guarded function and records its
// response; replays with the same (user, operation, key) return the
// recorded response without executing again.
type IdempotencyGuard interface {
	Execute(ctx context.Context, userID uint, operation, key string, fn func(ctx context.Context) (any, error)) (response []byte, replayed bool, err error)
}

// IdempotencyGuardImpl implements IdempotencyGuard over a Redis lock plus
// a durable marker table
type IdempotencyGuardImpl struct {
	locker     *redislock.Client
	cache      *redis.Client
	markerRepo repository.IdempotencyKeyRepository
	db         *gorm.DB
}

// NewIdempotencyGuard creates a new idempotency guard. A nil cache is
// allowed; the guard then skips the lock and cache fast path and relies on
// the marker table alone.
func NewIdempotencyGuard(cache *redis.Client, markerRepo repository.IdempotencyKeyRepository, db *gorm.DB) IdempotencyGuard {
	guard := &IdempotencyGuardImpl{
		cache:      cache,
		markerRepo: markerRepo,
		db:         db,
	}
	if cache != nil {
		guard.locker = redislock.New(cache)
	}
	return guard
}

// Execute runs fn under the idempotency contract. An empty key disables
// the guard and fn runs unconditionally.
func (g *IdempotencyGuardImpl) Execute(ctx context.Context, userID uint, operation, key string, fn func(ctx context.Context) (any, error)) ([]byte, bool, error) {
	if key == "" {
		result, err := fn(ctx)
		if err != nil {
			return nil, false, err
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return nil, false, fmt.Errorf("failed to encode response: %w", err)
		}
		return payload, false, nil
	}

	cacheKey := fmt.Sprintf("idempotency:%d:%s:%s", userID, operation, key)

	// Fast path: a completed replay served straight from cache
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, cacheKey).Bytes(); err == nil && len(cached) > 0 {
			return cached, true, nil
		}
	}

	if g.locker != nil {
		lock, err := g.locker.Obtain(ctx, cacheKey+":lock", utils.IdempotencyLockTTL, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				return nil, false, ErrReplayInProgress
			}
			return nil, false, fmt.Errorf("failed to obtain idempotency lock: %w", err)
		}
		defer func() { _ = lock.Release(ctx) }()
	}

	// Durable path: check the marker table under the lock
	marker, err := g.markerRepo.ByUserOperationKey(ctx, userID, operation, key)
	if err != nil {
		return nil, false, err
	}
	if marker != nil {
		if marker.Status == models.IdempotencyStatusCompleted {
			return marker.Response, true, nil
		}
		// An in-progress marker has no completed response to replay; clear
		// it and run again under the lock we now hold.
		if err := g.markerRepo.Delete(ctx, marker.ID); err != nil {
			return nil, false, err
		}
	}

	// The marker insert, the guarded mutation, and the completion stamp
	// commit together. An interrupted run rolls back to no marker at all,
	// so a retry re-executes instead of replaying a half-written outcome.
	var payload []byte
	err = repository.WithTransaction(ctx, g.db, func(ctx context.Context) error {
		marker = &models.IdempotencyKey{
			UserID:    userID,
			Operation: operation,
			Key:       key,
			Status:    models.IdempotencyStatusInProgress,
			CreatedAt: utils.UTCNow(),
			UpdatedAt: utils.UTCNow(),
		}
		if err := g.markerRepo.Save(ctx, marker); err != nil {
			return err
		}

		result, err := fn(ctx)
		if err != nil {
			return err
		}

		payload, err = json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}

		return g.markerRepo.Complete(ctx, marker.ID, payload)
	})
	if err != nil {
		return nil, false, err
	}

	// Cache failures are not fatal; the marker table remains authoritative
	if g.cache != nil {
		_ = g.cache.Set(ctx, cacheKey, payload, utils.IdempotencyCacheTTL).Err()
	}

	return payload, false, nil
}
