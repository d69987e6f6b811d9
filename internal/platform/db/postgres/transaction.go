package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrReadOnlyTransaction は読み取り専用トランザクションの中で書き込みトランザクションを要求した場合のエラーです。
var ErrReadOnlyTransaction = errors.New("postgres: read-write transaction requested inside read-only transaction")

type transactionContextKey struct{}

var txContextKey = transactionContextKey{}

// txState はコンテキストに格納する実行中トランザクションです。
type txState struct {
	tx   pgx.Tx
	mode pgx.TxAccessMode
}

type txStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TransactionManager は pgx を用いたトランザクション制御を提供します。
// 入れ子の呼び出しでは外側のトランザクションをそのまま使います。
type TransactionManager struct {
	pool   txStarter
	logger *zap.Logger
}

// TransactionOption は TransactionManager の任意設定です。
type TransactionOption func(*TransactionManager)

// WithTransactionLogger はロールバック失敗を記録するロガーを設定します。
func WithTransactionLogger(l *zap.Logger) TransactionOption {
	return func(m *TransactionManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewTransactionManager は TransactionManager を生成します。
func NewTransactionManager(pool txStarter, opts ...TransactionOption) *TransactionManager {
	if pool == nil {
		return nil
	}
	m := &TransactionManager{pool: pool, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithinReadOnly は読み取り専用トランザクションを開始し、fn を実行します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	return m.within(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

// WithinReadWrite は読み書きトランザクションを開始し、fn を実行します。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	return m.within(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite}, fn)
}

func (m *TransactionManager) within(ctx context.Context, opts pgx.TxOptions, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("postgres: transaction function is required")
	}

	if state, ok := stateFromContext(ctx); ok {
		if state.mode == pgx.ReadOnly && opts.AccessMode == pgx.ReadWrite {
			return ErrReadOnlyTransaction
		}
		return fn(ctx)
	}

	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	txCtx := context.WithValue(ctx, txContextKey, txState{tx: tx, mode: opts.AccessMode})

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			m.logger.Warn("transaction rollback failed", zap.Error(rbErr))
			return errors.Join(err, fmt.Errorf("postgres: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if !errors.Is(err, pgx.ErrTxClosed) {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				m.logger.Warn("transaction rollback after commit failure failed", zap.Error(rbErr))
				return errors.Join(fmt.Errorf("postgres: commit: %w", err), fmt.Errorf("postgres: rollback after commit failure: %w", rbErr))
			}
		}
		return fmt.Errorf("postgres: commit: %w", err)
	}

	committed = true
	return nil
}

func stateFromContext(ctx context.Context) (txState, bool) {
	if ctx == nil {
		return txState{}, false
	}
	state, ok := ctx.Value(txContextKey).(txState)
	return state, ok
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	state, ok := stateFromContext(ctx)
	if !ok {
		return nil, false
	}
	return state.tx, true
}

// QueryerFromContext はコンテキスト内にトランザクションが存在すればそれを返し、存在しなければ fallback を返します。
func QueryerFromContext(ctx context.Context, fallback Queryer) Queryer {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return fallback
}

// Queryer は pgx.Tx および pgxpool.Pool と互換性のあるクエリ実行インターフェースです。
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
