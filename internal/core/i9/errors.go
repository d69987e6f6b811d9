package i9

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidID は ID が不正な場合に返されます。
	ErrInvalidID = errors.New("i9: invalid id")
	// ErrFormNotFound はフォームが存在しない場合に返されます。
	ErrFormNotFound = errors.New("i9: form not found")
	// ErrInvalidField は更新対象外の項目名が指定された場合に返されます。
	ErrInvalidField = errors.New("i9: invalid field")
	// ErrInvalidTransition は状態遷移のガード条件を満たさない場合に返されます。
	ErrInvalidTransition = errors.New("i9: invalid status transition")
	// ErrAlreadySubmitted は HR に引き渡し済みのフォームを変更しようとした場合に返されます。
	ErrAlreadySubmitted = errors.New("i9: form already submitted")
	// ErrInvalidStatus は未定義の状態が指定された場合に返されます。
	ErrInvalidStatus = errors.New("i9: invalid status")
	// ErrFormAlreadyExists は同じ従業員のフォームが既に存在する場合にリポジトリが返します。
	ErrFormAlreadyExists = errors.New("i9: form already exists for employee")
	// ErrStatusConflict は条件付き更新の時点で状態が変わっていた場合にリポジトリが返します。
	ErrStatusConflict = errors.New("i9: status changed concurrently")
	// ErrInvalidPageSize はページサイズが上限を超えた場合に返されます。
	ErrInvalidPageSize = errors.New("i9: invalid page size")
	// ErrInvalidPageToken はページトークンが不正な場合に返されます。
	ErrInvalidPageToken = errors.New("i9: invalid page token")
	// ErrStatusOverrideDisabled は状態の直接変更が無効化されている場合に返されます。
	ErrStatusOverrideDisabled = errors.New("i9: direct status override is disabled")
)

// TransitionError は状態遷移が拒否された理由を保持します。
type TransitionError struct {
	Action   Action
	Current  Status
	Required []Status
}

func (e *TransitionError) Error() string {
	required := make([]string, 0, len(e.Required))
	for _, s := range e.Required {
		required = append(required, string(s))
	}
	return fmt.Sprintf("i9: cannot %s while status is %s (requires %s)", e.Action, e.Current, strings.Join(required, " or "))
}

// Is により errors.Is(err, ErrInvalidTransition) で判定できます。
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
