package i9

import (
	"errors"

	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

// 遷移結果の分類です。
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Metrics はワークフロー遷移の計測を抽象化します。
type Metrics interface {
	ObserveTransition(action Action, outcome string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveTransition(Action, string) {}

// NoopMetrics は何も記録しない Metrics を返します。
func NoopMetrics() Metrics {
	return noopMetrics{}
}

// OutcomeOf はエラーを遷移結果の分類に変換します。
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrFormNotFound),
		errors.Is(err, ErrAlreadySubmitted),
		errors.Is(err, ErrStatusOverrideDisabled),
		errors.Is(err, validation.ErrValidationFailed):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}
