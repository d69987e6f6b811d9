package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AshithaPGowda/code-challenge/internal/platform/config"
)

const (
	// ApplicationName は pg_stat_activity に表示される接続名です。
	ApplicationName = "i9-voice-assistant"

	defaultHealthCheckPeriod = 30 * time.Second
	startupPingTimeout       = 5 * time.Second
)

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
// 未設定の値は pgx の既定値のままにします。
func BuildPoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		minConns := int32(cfg.MaxIdleConns)
		if minConns > poolCfg.MaxConns {
			minConns = poolCfg.MaxConns
		}
		poolCfg.MinConns = minConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
	poolCfg.HealthCheckPeriod = defaultHealthCheckPeriod

	if poolCfg.ConnConfig.RuntimeParams == nil {
		poolCfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	poolCfg.ConnConfig.RuntimeParams["timezone"] = "UTC"

	return poolCfg, nil
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。
// 起動直後の疎通確認は ctx とは別に上限時間を設けます。
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	return pool, nil
}
