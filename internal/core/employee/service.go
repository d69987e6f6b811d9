package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は電話番号による従業員の特定と作成をまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	FindOrCreate(ctx context.Context, in FindOrCreateInput) (*FindOrCreateResult, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	UpdateEmail(ctx context.Context, in UpdateEmailInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// FindOrCreateInput は電話番号による検索・作成時の入力です。
type FindOrCreateInput struct {
	Phone string
	Email *string
}

// FindOrCreateResult は検索・作成の結果です。
type FindOrCreateResult struct {
	Employee *Employee
	Found    bool
	Created  bool
}

// GetEmployeeInput は従業員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// UpdateEmailInput はメールアドレス変更時の入力です。
type UpdateEmailInput struct {
	ID    string
	Email string
}

// DeleteEmployeeInput は従業員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// FindOrCreate は正規化した電話番号で従業員を検索し、存在しなければ作成します。
// システム内で電話番号から従業員を特定する唯一の入口です。
func (s *Service) FindOrCreate(ctx context.Context, in FindOrCreateInput) (*FindOrCreateResult, error) {
	if strings.TrimSpace(in.Phone) == "" {
		return nil, validation.NewError("phone", "phone number is required")
	}
	phone := validation.CanonicalPhone(in.Phone)

	var result *FindOrCreateResult
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByPhone(txCtx, phone)
		if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
			return err
		}
		if found != nil {
			synced, err := s.syncEmail(txCtx, found, in.Email)
			if err != nil {
				return err
			}
			result = &FindOrCreateResult{Employee: synced, Found: true}
			return nil
		}

		if !validation.ValidatePhone(in.Phone) {
			return validation.NewError("phone", "invalid US phone number format")
		}

		email, err := normalizeEmail(in.Email)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		created, err := s.repo.Create(txCtx, &Employee{
			Phone:     phone,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if errors.Is(err, ErrPhoneAlreadyRegistered) {
			// 同じ番号で並行して作成された場合は勝った行を返す
			winner, findErr := s.repo.FindByPhone(txCtx, phone)
			if findErr != nil {
				return findErr
			}
			synced, syncErr := s.syncEmail(txCtx, winner, in.Email)
			if syncErr != nil {
				return syncErr
			}
			result = &FindOrCreateResult{Employee: synced, Found: true}
			return nil
		}
		if err != nil {
			return err
		}

		result = &FindOrCreateResult{Employee: created, Created: true}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// syncEmail は登録済みの従業員に新しいメールアドレスが渡された場合だけ更新します。
func (s *Service) syncEmail(ctx context.Context, found *Employee, raw *string) (*Employee, error) {
	email, err := normalizeEmail(raw)
	if err != nil {
		return nil, err
	}
	if email == nil || (found.Email != nil && *found.Email == *email) {
		return found, nil
	}
	return s.repo.UpdateEmail(ctx, found.ID, email, s.clock.Now())
}

// UpdateEmail は従業員のメールアドレスを変更します。空文字なら未登録に戻します。
func (s *Service) UpdateEmail(ctx context.Context, in UpdateEmailInput) (*Employee, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	email, err := normalizeEmail(&in.Email)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		updated, err := s.repo.UpdateEmail(txCtx, id, email, s.clock.Now())
		if err != nil {
			return err
		}
		result = updated
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetEmployee は従業員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, strings.TrimSpace(in.ID))
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteEmployee は従業員を削除します。紐づく I-9 フォームも削除されます。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, strings.TrimSpace(in.ID))
	})
}

func normalizeEmail(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	if !validation.ValidateEmail(trimmed) {
		return nil, validation.NewError("email", "invalid email format")
	}
	lower := strings.ToLower(trimmed)
	return &lower, nil
}
