package employee

import (
	"context"
	"time"
)

// Repository は従業員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByPhone(ctx context.Context, phone string) (*Employee, error)
	// UpdateEmail はメールアドレスだけを更新します。email が nil なら未登録に戻します。
	UpdateEmail(ctx context.Context, id string, email *string, updatedAt time.Time) (*Employee, error)
	Delete(ctx context.Context, id string) error
}
