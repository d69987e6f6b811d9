package i9

import (
	"strings"
	"time"

	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

// Action はワークフロー上の操作です。
type Action string

const (
	ActionCompleteSection1   Action = "complete_section1"
	ActionApproveData        Action = "approve_data"
	ActionRequestCorrections Action = "request_corrections"
	ActionVerifyFinal        Action = "verify_final"
	ActionOverride           Action = "override"
)

type transition struct {
	from []Status
	to   Status
}

var transitions = map[Action]transition{
	ActionCompleteSection1:   {from: []Status{StatusInProgress, StatusNeedsCorrection}, to: StatusCompleted},
	ActionApproveData:        {from: []Status{StatusCompleted}, to: StatusDataApproved},
	ActionRequestCorrections: {from: []Status{StatusCompleted}, to: StatusNeedsCorrection},
	ActionVerifyFinal:        {from: []Status{StatusDataApproved}, to: StatusVerified},
}

// RequiredStatuses は操作が許可される遷移元の状態を返します。
func RequiredStatuses(action Action) []Status {
	t, ok := transitions[action]
	if !ok {
		return nil
	}
	out := make([]Status, len(t.from))
	copy(out, t.from)
	return out
}

// Transition は現在の状態に操作を適用した遷移先を返します。
// ガード条件を満たさない場合は *TransitionError を返します。
func Transition(current Status, action Action) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return current, &TransitionError{Action: action, Current: current}
	}
	for _, from := range t.from {
		if from == current {
			return t.to, nil
		}
	}
	return current, &TransitionError{Action: action, Current: current, Required: RequiredStatuses(action)}
}

// ApplyCompleteSection1 は Section 1 の完了を適用した新しいフォームを返します。
// 必須項目が不足している場合は不足項目を列挙した *validation.Error を返します。
func ApplyCompleteSection1(form *Form, now time.Time) (*Form, error) {
	next, err := Transition(form.Status, ActionCompleteSection1)
	if err != nil {
		return nil, err
	}

	if missing := form.MissingRequired(); len(missing) > 0 {
		verr := &validation.Error{}
		for _, f := range missing {
			verr.Add(string(f), "required field is missing")
		}
		return nil, verr
	}

	updated := form.Clone()
	updated.Status = next
	markCompleted(updated, now)
	return updated, nil
}

// ApplyReview は HR の確認操作を適用した新しいフォームを返します。
// 差し戻しの場合のみ notes を必須とし、状態に関わらず先に検証します。
func ApplyReview(form *Form, action Action, reviewer, notes string, now time.Time) (*Form, error) {
	notes = strings.TrimSpace(notes)
	if action == ActionRequestCorrections && notes == "" {
		return nil, validation.NewError("notes", "correction notes are required")
	}

	next, err := Transition(form.Status, action)
	if err != nil {
		return nil, err
	}

	updated := form.Clone()
	updated.Status = next
	if action == ActionRequestCorrections {
		updated.EmployerNotes = notes
	}
	stampReview(updated, reviewer, now)
	return updated, nil
}

// ApplyOverride は遷移表を経由せずに状態を直接変更した新しいフォームを返します。
// 完了日時は遷移先が completed の場合のみ、未設定であれば記録します。
func ApplyOverride(form *Form, target Status, reviewer string, now time.Time) (*Form, error) {
	if !target.Valid() {
		return nil, ErrInvalidStatus
	}

	updated := form.Clone()
	updated.Status = target
	if target == StatusCompleted && updated.CompletedAt == nil {
		at := now
		updated.CompletedAt = &at
	}
	stampReview(updated, reviewer, now)
	return updated, nil
}

func markCompleted(f *Form, now time.Time) {
	if f.CompletedAt == nil {
		at := now
		f.CompletedAt = &at
	}
	signed := now
	f.EmployeeSignatureDate = &signed
	f.EmployeeSignatureMethod = SignatureMethodVoice
	f.UpdatedAt = now
}

func stampReview(f *Form, reviewer string, now time.Time) {
	at := now
	f.EmployerReviewedAt = &at
	f.EmployerReviewedBy = strings.TrimSpace(reviewer)
	f.UpdatedAt = now
}
