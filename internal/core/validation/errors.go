package validation

import (
	"errors"
	"strings"
)

// ErrValidationFailed は入力値の検証に失敗した場合の種別です。
var ErrValidationFailed = errors.New("validation failed")

// Violation は 1 項目分の検証エラーです。
type Violation struct {
	Field   string
	Message string
}

// Error は検出したすべての検証エラーをまとめて保持します。
type Error struct {
	Violations []Violation
}

// NewError は単一項目の検証エラーを生成します。
func NewError(field, message string) *Error {
	return &Error{Violations: []Violation{{Field: field, Message: message}}}
}

// Add は検証エラーを追加します。
func (e *Error) Add(field, message string) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: message})
}

// HasViolations は検証エラーが 1 件以上あるかを返します。
func (e *Error) HasViolations() bool {
	return e != nil && len(e.Violations) > 0
}

// Messages は検証エラーのメッセージ一覧を返します。
func (e *Error) Messages() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Message)
	}
	return out
}

// Fields は検証エラーが発生した項目名の一覧を返します。
func (e *Error) Fields() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Field)
	}
	return out
}

// OrNil は検証エラーがなければ nil を返します。
func (e *Error) OrNil() error {
	if !e.HasViolations() {
		return nil
	}
	return e
}

func (e *Error) Error() string {
	if !e.HasViolations() {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

// Is により errors.Is(err, ErrValidationFailed) で判定できます。
func (e *Error) Is(target error) bool {
	return target == ErrValidationFailed
}
