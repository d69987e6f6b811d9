package notice

import (
	"context"

	"go.uber.org/zap"
)

// Notifier は文面の組み立てと宛先の整形を行い、Sender に送信を委譲します。
// 送信できなかった場合はログに残して false を返します。
type Notifier struct {
	sender    Sender
	templates Templates
	logger    *zap.Logger
}

// NewNotifier は Notifier を生成します。sender が nil の場合は送信しません。
func NewNotifier(sender Sender, templates Templates, logger *zap.Logger) *Notifier {
	if sender == nil {
		sender = NopSender{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{sender: sender, templates: templates, logger: logger}
}

// Submitted は提出完了を通知します。
func (n *Notifier) Submitted(ctx context.Context, phone string) bool {
	if n == nil {
		return false
	}
	return n.deliver(ctx, "submitted", phone, n.templates.Submitted())
}

// Approved は承認を通知します。documentURL が空の場合はリンクなしの文面を送ります。
func (n *Notifier) Approved(ctx context.Context, phone, documentURL string) bool {
	if n == nil {
		return false
	}
	if documentURL == "" {
		return n.deliver(ctx, "approved_without_document", phone, n.templates.ApprovedWithoutDocument())
	}
	return n.deliver(ctx, "approved", phone, n.templates.Approved(documentURL))
}

// CorrectionsRequested は差し戻しを通知します。
func (n *Notifier) CorrectionsRequested(ctx context.Context, phone, notes string) bool {
	if n == nil {
		return false
	}
	return n.deliver(ctx, "corrections_requested", phone, n.templates.CorrectionsRequested(notes))
}

func (n *Notifier) deliver(ctx context.Context, kind, phone, text string) bool {
	to := FormatRecipient(phone)
	log := n.logger.With(zap.String("notice", kind), zap.String("to", to))

	if !ValidRecipient(to) {
		log.Warn("skip sms: invalid recipient")
		return false
	}
	if !ValidMessage(text) {
		log.Warn("skip sms: invalid message length", zap.Int("length", len([]rune(text))))
		return false
	}

	if !n.sender.Send(ctx, to, text) {
		log.Warn("sms not delivered")
		return false
	}
	log.Info("sms delivered")
	return true
}
