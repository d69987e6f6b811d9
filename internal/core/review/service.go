// Package review は HR による I-9 フォームの確認ワークフローを扱います。
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

// DefaultReviewer は確認者が指定されなかった場合に記録する名前です。
const DefaultReviewer = "hr"

// 副作用の種類です。
const (
	SideEffectDocument = "document"
	SideEffectSMS      = "sms"
)

const actionResendApproval i9.Action = "resend_approval"

// Renderer は書類の項目から PDF を生成します。
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// ArtifactStore は生成した書類を保存し、公開 URL を返します。
type ArtifactStore interface {
	Save(ctx context.Context, formID string, content []byte) (string, error)
}

// Notifier は確認結果の SMS 通知を送ります。
type Notifier interface {
	Approved(ctx context.Context, phone, documentURL string) bool
	CorrectionsRequested(ctx context.Context, phone, notes string) bool
}

// EmployeeDirectory は通知先の従業員を取得します。
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, in employee.GetEmployeeInput) (*employee.Employee, error)
}

// Metrics は遷移と副作用の計測を抽象化します。
type Metrics interface {
	i9.Metrics
	ObserveSideEffect(effect string, ok bool)
}

type noopMetrics struct{}

func (noopMetrics) ObserveTransition(i9.Action, string) {}
func (noopMetrics) ObserveSideEffect(string, bool)      {}

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

// Service は HR の確認操作と、それに続く書類生成・通知をまとめます。
// 状態の変更を確定させてから副作用を実行し、副作用の失敗は結果のフラグで返します。
type Service struct {
	forms         i9.Repository
	employees     EmployeeDirectory
	renderer      Renderer
	artifacts     ArtifactStore
	notifier      Notifier
	organization  Organization
	clock         Clock
	tx            TransactionManager
	metrics       Metrics
	logger        *zap.Logger
	allowOverride bool
}

// UseCase は確認ワークフローの公開インターフェースです。
type UseCase interface {
	ApproveData(ctx context.Context, in ApproveDataInput) (*ApproveDataResult, error)
	RequestCorrections(ctx context.Context, in RequestCorrectionsInput) (*RequestCorrectionsResult, error)
	VerifyFinal(ctx context.Context, in VerifyFinalInput) (*i9.Form, error)
	OverrideStatus(ctx context.Context, in OverrideStatusInput) (*i9.Form, error)
	ResendApproval(ctx context.Context, in ResendApprovalInput) (*ApproveDataResult, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithDocuments は承認時の書類生成を設定します。
func WithDocuments(renderer Renderer, artifacts ArtifactStore, org Organization) Option {
	return func(s *Service) {
		s.renderer = renderer
		s.artifacts = artifacts
		s.organization = org
	}
}

// WithNotifier は通知の送信先を設定します。
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithEmployees は通知先の電話番号を従業員情報から引くよう設定します。
func WithEmployees(d EmployeeDirectory) Option {
	return func(s *Service) { s.employees = d }
}

// WithMetrics は計測先を設定します。
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger はロガーを設定します。
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStatusOverride は遷移表を経由しない状態の直接変更を許可するかどうかを設定します。
func WithStatusOverride(allowed bool) Option {
	return func(s *Service) { s.allowOverride = allowed }
}

// NewService は Service を生成します。
func NewService(forms i9.Repository, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		forms:   forms,
		clock:   clock,
		tx:      tx,
		metrics: noopMetrics{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApproveDataInput はデータ承認時の入力です。
type ApproveDataInput struct {
	ID       string
	Reviewer string
}

// ApproveDataResult はデータ承認の結果です。
type ApproveDataResult struct {
	Form         *i9.Form
	PDFGenerated bool
	PDFURL       string
	SMSSent      bool
	Recipient    string
}

// RequestCorrectionsInput は差し戻し時の入力です。
type RequestCorrectionsInput struct {
	ID       string
	Reviewer string
	Notes    string
}

// RequestCorrectionsResult は差し戻しの結果です。
type RequestCorrectionsResult struct {
	Form      *i9.Form
	SMSSent   bool
	Recipient string
}

// VerifyFinalInput は最終確認時の入力です。
type VerifyFinalInput struct {
	ID       string
	Reviewer string
}

// OverrideStatusInput は状態の直接変更時の入力です。
type OverrideStatusInput struct {
	ID       string
	Status   i9.Status
	Reviewer string
}

// ResendApprovalInput は承認書類と通知の再送時の入力です。
type ResendApprovalInput struct {
	ID string
}

// ApproveData はフォームを data_approved にし、書類の生成と承認通知を行います。
// 書類生成や通知に失敗しても承認は取り消しません。
func (s *Service) ApproveData(ctx context.Context, in ApproveDataInput) (*ApproveDataResult, error) {
	form, err := s.transition(ctx, in.ID, i9.ActionApproveData, in.Reviewer, "")
	if err != nil {
		return nil, err
	}
	return s.publishApproval(ctx, form), nil
}

// ResendApproval は承認済みフォームの書類生成と通知をやり直します。状態は変更しません。
func (s *Service) ResendApproval(ctx context.Context, in ResendApprovalInput) (*ApproveDataResult, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var form *i9.Form
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.forms.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		form = found
		return nil
	}); err != nil {
		return nil, err
	}

	if form.Status != i9.StatusDataApproved && form.Status != i9.StatusVerified {
		return nil, &i9.TransitionError{
			Action:   actionResendApproval,
			Current:  form.Status,
			Required: []i9.Status{i9.StatusDataApproved, i9.StatusVerified},
		}
	}
	return s.publishApproval(ctx, form), nil
}

// RequestCorrections はフォームを needs_correction にし、差し戻し通知を送ります。
func (s *Service) RequestCorrections(ctx context.Context, in RequestCorrectionsInput) (*RequestCorrectionsResult, error) {
	if strings.TrimSpace(in.Notes) == "" {
		s.metrics.ObserveTransition(i9.ActionRequestCorrections, i9.OutcomeRejected)
		return nil, validation.NewError("notes", "correction notes are required")
	}

	form, err := s.transition(ctx, in.ID, i9.ActionRequestCorrections, in.Reviewer, in.Notes)
	if err != nil {
		return nil, err
	}

	result := &RequestCorrectionsResult{Form: form, Recipient: s.recipient(ctx, form)}
	if s.notifier != nil {
		result.SMSSent = s.notifier.CorrectionsRequested(ctx, result.Recipient, form.EmployerNotes)
	}
	s.metrics.ObserveSideEffect(SideEffectSMS, result.SMSSent)
	return result, nil
}

// VerifyFinal はフォームを verified にします。
func (s *Service) VerifyFinal(ctx context.Context, in VerifyFinalInput) (*i9.Form, error) {
	return s.transition(ctx, in.ID, i9.ActionVerifyFinal, in.Reviewer, "")
}

// OverrideStatus は遷移表を経由せずに状態を変更します。設定で許可されている場合のみ使えます。
func (s *Service) OverrideStatus(ctx context.Context, in OverrideStatusInput) (*i9.Form, error) {
	if !s.allowOverride {
		s.metrics.ObserveTransition(i9.ActionOverride, i9.OutcomeRejected)
		return nil, i9.ErrStatusOverrideDisabled
	}
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *i9.Form
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		form, err := s.forms.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		updated, err := i9.ApplyOverride(form, in.Status, reviewerOrDefault(in.Reviewer), s.clock.Now())
		if err != nil {
			return err
		}
		saved, err := s.forms.Update(txCtx, updated, form.Status)
		if err != nil {
			return err
		}
		result = saved
		return nil
	})
	s.metrics.ObserveTransition(i9.ActionOverride, i9.OutcomeOf(err))
	if err != nil {
		return nil, err
	}

	s.logger.Warn("i9 status overridden",
		zap.String("form_id", result.ID),
		zap.String("status", string(result.Status)),
		zap.String("reviewer", result.EmployerReviewedBy),
	)
	return result, nil
}

func (s *Service) transition(ctx context.Context, rawID string, action i9.Action, reviewer, notes string) (*i9.Form, error) {
	id, err := normalizeID(rawID)
	if err != nil {
		return nil, err
	}

	var result *i9.Form
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		form, err := s.forms.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		updated, err := i9.ApplyReview(form, action, reviewerOrDefault(reviewer), notes, s.clock.Now())
		if err != nil {
			return err
		}

		saved, err := s.forms.Update(txCtx, updated, form.Status)
		if errors.Is(err, i9.ErrStatusConflict) {
			return i9.ConflictError(txCtx, s.forms, id, action)
		}
		if err != nil {
			return err
		}
		result = saved
		return nil
	})
	s.metrics.ObserveTransition(action, i9.OutcomeOf(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("i9 review transition",
		zap.String("form_id", result.ID),
		zap.String("action", string(action)),
		zap.String("status", string(result.Status)),
		zap.String("reviewer", result.EmployerReviewedBy),
	)
	return result, nil
}

func (s *Service) publishApproval(ctx context.Context, form *i9.Form) *ApproveDataResult {
	result := &ApproveDataResult{Form: form}

	url, err := s.publishDocument(ctx, form)
	if err != nil {
		s.logger.Error("i9 document generation failed", zap.String("form_id", form.ID), zap.Error(err))
	} else {
		result.PDFGenerated = true
		result.PDFURL = url
	}
	s.metrics.ObserveSideEffect(SideEffectDocument, result.PDFGenerated)

	result.Recipient = s.recipient(ctx, form)
	if s.notifier != nil {
		result.SMSSent = s.notifier.Approved(ctx, result.Recipient, result.PDFURL)
	}
	s.metrics.ObserveSideEffect(SideEffectSMS, result.SMSSent)

	s.logger.Info("i9 approval published",
		zap.String("form_id", form.ID),
		zap.Bool("pdf_generated", result.PDFGenerated),
		zap.Bool("sms_sent", result.SMSSent),
	)
	return result
}

var errDocumentsDisabled = errors.New("review: document rendering is not configured")

func (s *Service) publishDocument(ctx context.Context, form *i9.Form) (string, error) {
	if s.renderer == nil || s.artifacts == nil {
		return "", errDocumentsDisabled
	}

	content, err := s.renderer.Render(ctx, BuildDocument(form, s.organization, s.clock.Now()))
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	url, err := s.artifacts.Save(ctx, form.ID, content)
	if err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	return url, nil
}

// recipient は通知先の電話番号を返します。従業員情報を引けない場合はフォームの電話番号を使います。
func (s *Service) recipient(ctx context.Context, form *i9.Form) string {
	if s.employees == nil {
		return form.Phone
	}
	emp, err := s.employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: form.EmployeeID})
	if err != nil {
		s.logger.Warn("employee lookup for notification failed", zap.String("form_id", form.ID), zap.Error(err))
		return form.Phone
	}
	return emp.Phone
}

func normalizeID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", i9.ErrInvalidID)
	}
	return trimmed, nil
}

func reviewerOrDefault(reviewer string) string {
	if r := strings.TrimSpace(reviewer); r != "" {
		return r
	}
	return DefaultReviewer
}
