// Package refdata serves withholding profiles and income tax rules through a
// versioned Redis cache.
package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
)

const (
	versionKey  = "procman:refdata:version"
	bumpChannel = "refdata.bump"
)

// ErrNotFound is returned by loaders for unknown ids.
var ErrNotFound = errors.New("refdata: not found")

// Loader reads reference rows from the database.
type Loader interface {
	Profile(ctx context.Context, id int64) (costing.WithholdingProfile, error)
	Rule(ctx context.Context, id int64) (costing.IncomeTaxRule, error)
}

// Cache wraps Redis based caching with versioning controls. A nil client
// disables caching and every read goes to the loader.
type Cache struct {
	client *redis.Client
	loader Loader
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, loader Loader, ttl time.Duration) *Cache {
	return &Cache{client: client, loader: loader, ttl: ttl}
}

// Profile resolves an optional profile reference. Dangling ids resolve to
// None so a deleted profile never breaks an analysis.
func (c *Cache) Profile(ctx context.Context, id *int64) (costing.Optional[costing.WithholdingProfile], error) {
	if id == nil {
		return costing.None[costing.WithholdingProfile](), nil
	}
	var p costing.WithholdingProfile
	err := c.fetch(ctx, "profile", *id, &p, func(ctx context.Context) (any, error) {
		return c.loader.Profile(ctx, *id)
	})
	if errors.Is(err, ErrNotFound) {
		return costing.None[costing.WithholdingProfile](), nil
	}
	if err != nil {
		return costing.None[costing.WithholdingProfile](), err
	}
	return costing.Some(p), nil
}

// Rule resolves an optional income tax rule reference.
func (c *Cache) Rule(ctx context.Context, id *int64) (costing.Optional[costing.IncomeTaxRule], error) {
	if id == nil {
		return costing.None[costing.IncomeTaxRule](), nil
	}
	var r costing.IncomeTaxRule
	err := c.fetch(ctx, "rule", *id, &r, func(ctx context.Context) (any, error) {
		return c.loader.Rule(ctx, *id)
	})
	if errors.Is(err, ErrNotFound) {
		return costing.None[costing.IncomeTaxRule](), nil
	}
	if err != nil {
		return costing.None[costing.IncomeTaxRule](), err
	}
	return costing.Some(r), nil
}

// fetch loads a cached value or populates it using the loader. Concurrent
// misses for the same key share one load.
func (c *Cache) fetch(ctx context.Context, kind string, id int64, dest any, loader func(context.Context) (any, error)) error {
	key, err := c.buildKey(ctx, kind, id)
	if err != nil {
		return err
	}
	if c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	raw, err, _ := c.group.Do(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if c.client != nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				return nil, err
			}
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.([]byte), dest)
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) || (err == nil && ver <= 0) {
		if err := c.client.Set(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *Cache) buildKey(ctx context.Context, kind string, id int64) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("procman:refdata:%s:%d:%d", kind, id, ver), nil
}

// Bump invalidates the cache by incrementing the global version and
// publishing an event.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows version bumps published by other processes
// until ctx is cancelled.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
					_ = c.client.Set(ctx, versionKey, ver, 0).Err()
					continue
				}
				_ = c.client.Incr(ctx, versionKey).Err()
			}
		}
	}()
	return nil
}
