package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"staybook/internal/domain"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// PropertyCache holds fully composed property read models. Failures never
// surface to callers; a miss falls back to the database.
type PropertyCache interface {
	GetProperty(ctx context.Context, id int64) (*domain.Property, bool)
	SetProperty(ctx context.Context, p *domain.Property)
	InvalidateProperty(ctx context.Context, id int64)
}

func propertyKey(id int64) string {
	return "property:" + strconv.FormatInt(id, 10)
}

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	log logrus.FieldLogger
}

func NewRedis(rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, log: log}
}

func (c *Redis) GetProperty(ctx context.Context, id int64) (*domain.Property, bool) {
	raw, err := c.rdb.Get(ctx, propertyKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).WithField("property_id", id).Warn("cache get failed")
		return nil, false
	}

	var p domain.Property
	if err := json.Unmarshal(raw, &p); err != nil {
		c.log.WithError(err).WithField("property_id", id).Warn("cache decode failed")
		return nil, false
	}
	return &p, true
}

func (c *Redis) SetProperty(ctx context.Context, p *domain.Property) {
	raw, err := json.Marshal(p)
	if err != nil {
		c.log.WithError(err).WithField("property_id", p.ID).Warn("cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, propertyKey(p.ID), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("property_id", p.ID).Warn("cache set failed")
	}
}

func (c *Redis) InvalidateProperty(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, propertyKey(id)).Err(); err != nil {
		c.log.WithError(err).WithField("property_id", id).Warn("cache delete failed")
	}
}

// Nop disables caching.
type Nop struct{}

func (Nop) GetProperty(context.Context, int64) (*domain.Property, bool) { return nil, false }
func (Nop) SetProperty(context.Context, *domain.Property)               {}
func (Nop) InvalidateProperty(context.Context, int64)                   {}

// Memory is a process-local cache with the same encoding as Redis.
type Memory struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{items: map[string][]byte{}}
}

func (c *Memory) GetProperty(_ context.Context, id int64) (*domain.Property, bool) {
	c.mu.Lock()
	raw, ok := c.items[propertyKey(id)]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	var p domain.Property
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *Memory) SetProperty(_ context.Context, p *domain.Property) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.items[propertyKey(p.ID)] = raw
	c.mu.Unlock()
}

func (c *Memory) InvalidateProperty(_ context.Context, id int64) {
	c.mu.Lock()
	delete(c.items, propertyKey(id))
	c.mu.Unlock()
}

// Len is the number of cached entries.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
