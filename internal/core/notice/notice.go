// Package notice は従業員向け SMS 通知の文面と送信インターフェースを定義します。
package notice

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

// MaxLength は 1 通の SMS に含められる最大文字数です。
const MaxLength = 1600

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// Sender は SMS 送信の抽象化です。失敗は false で表し、呼び出し元の処理は止めません。
type Sender interface {
	Send(ctx context.Context, to, text string) bool
}

// NopSender は何も送信しない Sender です。
type NopSender struct{}

// Send は常に false を返します。
func (NopSender) Send(context.Context, string, string) bool {
	return false
}

// Templates は通知文面の組み立て設定です。
type Templates struct {
	OrganizationName string
	HRContact        string
}

// Submitted は提出完了の通知文面を返します。
func (t Templates) Submitted() string {
	return fmt.Sprintf("Your I-9 Employment Eligibility Verification form has been submitted successfully! Our HR team will review your information within 24 hours and notify you of the status. Thank you for your prompt submission!%s", t.signature())
}

// Approved は承認済み PDF へのリンク付き通知文面を返します。
func (t Templates) Approved(documentURL string) string {
	return fmt.Sprintf("Excellent news! Your I-9 form has been approved by our HR team. Your completed and signed PDF document is now ready for download: %s Please save this document for your records. Welcome aboard!%s", documentURL, t.signature())
}

// ApprovedWithoutDocument は PDF 生成に失敗した場合の承認通知文面を返します。
func (t Templates) ApprovedWithoutDocument() string {
	return fmt.Sprintf("Excellent news! Your I-9 form has been approved by our HR team. Your signed document is being prepared and HR will share it with you shortly. Welcome aboard!%s", t.signature())
}

// CorrectionsRequested は差し戻し理由付きの通知文面を返します。
// 全体が MaxLength を超える場合は HR のコメントを切り詰めます。
func (t Templates) CorrectionsRequested(notes string) string {
	contact := ""
	if t.HRContact != "" {
		contact = fmt.Sprintf(" Contact our HR team at %s if you have any questions.", t.HRContact)
	}
	build := func(n string) string {
		return fmt.Sprintf("Your I-9 form requires some updates before approval. HR feedback: \"%s\" Please review and resubmit your form with the requested changes.%s Thank you!%s", n, contact, t.signature())
	}

	notes = strings.TrimSpace(notes)
	msg := build(notes)
	overflow := utf8.RuneCountInString(msg) - MaxLength
	if overflow <= 0 {
		return msg
	}

	runes := []rune(notes)
	keep := len(runes) - overflow - 3
	if keep < 0 {
		keep = 0
	}
	return build(string(runes[:keep]) + "...")
}

func (t Templates) signature() string {
	if t.OrganizationName == "" {
		return ""
	}
	return " - " + t.OrganizationName
}

// FormatRecipient は電話番号を E.164 形式に整形します。
func FormatRecipient(phone string) string {
	return validation.CanonicalPhone(phone)
}

// ValidRecipient は送信先が E.164 形式として妥当かどうかを判定します。
func ValidRecipient(phone string) bool {
	return e164Pattern.MatchString(FormatRecipient(phone))
}

// ValidMessage は本文が空でなく MaxLength 以内かどうかを判定します。
func ValidMessage(text string) bool {
	n := utf8.RuneCountInString(text)
	return n > 0 && n <= MaxLength
}
