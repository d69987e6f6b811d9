package employee

import "time"

// Employee は電話番号をキーとする従業員の識別情報です。
type Employee struct {
	ID        string
	Phone     string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record は従業員を列名をキーとするマップに変換します。
func (e *Employee) Record() map[string]any {
	if e == nil {
		return nil
	}
	var email any
	if e.Email != nil {
		email = *e.Email
	}
	return map[string]any{
		"id":         e.ID,
		"phone":      e.Phone,
		"email":      email,
		"created_at": e.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
