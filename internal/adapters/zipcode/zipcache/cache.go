// Package zipcache は郵便番号検索結果の Redis キャッシュです。
package zipcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/zipcode"
)

const (
	keyPrefix  = "zip:v1:"
	defaultTTL = 7 * 24 * time.Hour
)

// Client は Cache が使う Redis 操作です。
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Options は Redis 接続の設定です。
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient は単一ノードの Redis クライアントを生成します。
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// Cache は core/zipcode.Cache の Redis 実装です。Redis の障害は未ヒットとして扱います。
type Cache struct {
	client Client
	ttl    time.Duration
	logger *zap.Logger
}

// New は Cache を生成します。ttl が 0 以下なら既定値を使います。
func New(client Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Get はキャッシュ済みの地域を返します。
func (c *Cache) Get(ctx context.Context, zip string) (*zipcode.Place, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+zip).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("zip cache get failed", zap.String("zip", zip), zap.Error(err))
		}
		return nil, false
	}

	var place zipcode.Place
	if err := json.Unmarshal([]byte(raw), &place); err != nil {
		c.logger.Warn("zip cache entry corrupt", zap.String("zip", zip), zap.Error(err))
		return nil, false
	}
	return &place, true
}

// Set は地域をキャッシュします。失敗はログに残すだけです。
func (c *Cache) Set(ctx context.Context, place *zipcode.Place) {
	if place == nil || place.ZipCode == "" {
		return
	}
	b, err := json.Marshal(place)
	if err != nil {
		c.logger.Warn("zip cache encode failed", zap.String("zip", place.ZipCode), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+place.ZipCode, b, c.ttl).Err(); err != nil {
		c.logger.Warn("zip cache set failed", zap.String("zip", place.ZipCode), zap.Error(err))
	}
}
