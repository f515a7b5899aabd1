package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/studyplan-backend/internal/modules/studyplan"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

const (
	defaultKeyPrefix = "studyplan:plan:"
	defaultTTL       = 6 * time.Hour
)

// PlanCache keeps valid model output for identical generation requests.
type PlanCache interface {
	Get(ctx context.Context, key string) (*studyplan.RawPlan, bool, error)
	Set(ctx context.Context, key string, plan *studyplan.RawPlan) error
	Close() error
}

type CacheOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

type planCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
}

func NewPlanCache(opts CacheOptions, log *logger.Logger) (PlanCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &planCache{
		log:    log.With("service", "RedisPlanCache"),
		rdb:    rdb,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

func (c *planCache) Get(ctx context.Context, key string) (*studyplan.RawPlan, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, fmt.Errorf("redis plan cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	plan, err := studyplan.ParseRawPlan(raw)
	if err != nil {
		// A corrupt entry is dropped and treated as a miss.
		c.log.Warn("discarding unreadable cached plan", "key", key, "error", err)
		_ = c.rdb.Del(ctx, c.prefix+key).Err()
		return nil, false, nil
	}
	return plan, true, nil
}

func (c *planCache) Set(ctx context.Context, key string, plan *studyplan.RawPlan) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis plan cache not initialized")
	}
	if plan == nil {
		return nil
	}
	raw := []byte(plan.Source)
	if len(raw) == 0 {
		var err error
		if raw, err = json.Marshal(plan); err != nil {
			return err
		}
	}
	return c.rdb.Set(ctx, c.prefix+key, raw, c.ttl).Err()
}

func (c *planCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// PlanKey identifies a generation request: the same skeleton, week count,
// weekly budget and model map to the same key.
func PlanKey(sk studyplan.Skeleton, weeks int, weeklyHours *float64, model string) (string, error) {
	payload, err := json.Marshal(struct {
		Skeleton    studyplan.Skeleton `json:"skeleton"`
		Weeks       int                `json:"weeks"`
		WeeklyHours *float64           `json:"weekly_hours"`
		Model       string             `json:"model"`
	}{sk, weeks, weeklyHours, strings.TrimSpace(model)})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
