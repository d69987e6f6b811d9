package i9

import (
	"context"
	"time"
)

// ListFormsFilter はフォーム一覧取得の条件です。
type ListFormsFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// Repository は I-9 フォームの永続化を抽象化します。
type Repository interface {
	// Create はフォームを作成します。同じ従業員のフォームが既にあれば ErrFormAlreadyExists を返します。
	Create(ctx context.Context, form *Form) (*Form, error)
	// Update はフォーム全体を保存します。保存時点の状態が expected と異なる場合は ErrStatusConflict を返します。
	Update(ctx context.Context, form *Form, expected Status) (*Form, error)
	// UpdateField は 1 項目だけを更新します。HR に引き渡し済みのフォームは更新せず ErrStatusConflict を返します。
	UpdateField(ctx context.Context, employeeID string, field Field, value string, updatedAt time.Time) (*Form, error)
	FindByID(ctx context.Context, id string) (*Form, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*Form, error)
	List(ctx context.Context, filter ListFormsFilter) ([]*Form, string, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}
