// Package zipcode は郵便番号から市区町村と州を引く処理を扱います。
package zipcode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

var (
	// ErrInvalidZip は郵便番号の形式が不正な場合のエラーです。
	ErrInvalidZip = fmt.Errorf("zipcode: invalid zip code: %w", validation.ErrValidationFailed)
	// ErrNotFound は郵便番号に対応する地域が見つからない場合のエラーです。
	ErrNotFound = errors.New("zipcode: not found")
	// ErrUnavailable は外部サービスに問い合わせできなかった場合のエラーです。
	// 呼び出し側には入力の検証失敗として扱わせ、市区町村と州を直接尋ねさせます。
	ErrUnavailable = fmt.Errorf("zipcode: lookup unavailable, ask for city and state instead: %w", validation.ErrValidationFailed)
)

// Place は郵便番号に対応する地域です。
type Place struct {
	ZipCode   string `json:"zip_code"`
	City      string `json:"city"`
	State     string `json:"state"`
	StateName string `json:"state_name"`
}

// Lookup は外部サービスから地域を取得します。該当なしは ErrNotFound を返します。
type Lookup interface {
	Lookup(ctx context.Context, zip string) (*Place, error)
}

// Cache は検索結果のキャッシュです。取得できない場合は (nil, false) を返します。
type Cache interface {
	Get(ctx context.Context, zip string) (*Place, bool)
	Set(ctx context.Context, place *Place)
}

// Service は郵便番号の正規化、キャッシュ、外部検索をまとめます。
type Service struct {
	lookup Lookup
	cache  Cache
	logger *zap.Logger
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithCache はキャッシュを設定します。
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger はロガーを設定します。
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService は Service を生成します。
func NewService(lookup Lookup, opts ...Option) *Service {
	s := &Service{lookup: lookup, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup は郵便番号から地域を返します。ZIP+4 は先頭 5 桁で検索します。
func (s *Service) Lookup(ctx context.Context, raw string) (*Place, error) {
	zip, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if place, ok := s.cache.Get(ctx, zip); ok {
			return place, nil
		}
	}

	place, err := s.lookup.Lookup(ctx, zip)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("zip lookup failed", zap.String("zip", zip), zap.Error(err))
		return nil, ErrUnavailable
	}

	if s.cache != nil {
		s.cache.Set(ctx, place)
	}
	return place, nil
}

// Normalize は郵便番号を 5 桁に正規化します。
func Normalize(raw string) (string, error) {
	zip := strings.TrimSpace(raw)
	if !validation.ValidateZip(zip) {
		return "", ErrInvalidZip
	}
	return zip[:5], nil
}
