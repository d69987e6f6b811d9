package i9

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
)

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

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

// EmployeeDirectory は電話番号による従業員の特定を提供します。
type EmployeeDirectory interface {
	FindOrCreate(ctx context.Context, in employee.FindOrCreateInput) (*employee.FindOrCreateResult, error)
	GetEmployee(ctx context.Context, in employee.GetEmployeeInput) (*employee.Employee, error)
}

// SubmissionNotifier は提出完了の SMS 通知を送ります。
type SubmissionNotifier interface {
	Submitted(ctx context.Context, phone string) bool
}

// Service は音声入力による I-9 Section 1 の作成と提出を扱います。
type Service struct {
	forms     Repository
	employees EmployeeDirectory
	clock     Clock
	tx        TransactionManager
	notifier  SubmissionNotifier
	metrics   Metrics
	logger    *zap.Logger
}

// UseCase は I-9 フォームユースケースの公開インターフェースです。
type UseCase interface {
	SaveField(ctx context.Context, in SaveFieldInput) (*Form, error)
	GetProgress(ctx context.Context, in GetProgressInput) (*Progress, error)
	CompleteSection1(ctx context.Context, in CompleteSection1Input) (*Form, error)
	SubmitComplete(ctx context.Context, in SubmitCompleteInput) (*SubmitCompleteResult, error)
	GetForm(ctx context.Context, in GetFormInput) (*Form, error)
	ListForms(ctx context.Context, in ListFormsInput) (*ListFormsResult, error)
	Stats(ctx context.Context) (*Stats, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithNotifier は提出完了通知の送信先を設定します。
func WithNotifier(n SubmissionNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics は遷移の計測先を設定します。
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

// NewService は Service を生成します。
func NewService(forms Repository, employees EmployeeDirectory, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		forms:     forms,
		employees: employees,
		clock:     clock,
		tx:        tx,
		metrics:   noopMetrics{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveFieldInput は 1 項目保存時の入力です。
type SaveFieldInput struct {
	EmployeeID string
	FieldName  string
	Value      string
}

// GetProgressInput は進捗取得時の入力です。
type GetProgressInput struct {
	EmployeeID string
}

// CompleteSection1Input は Section 1 完了時の入力です。
type CompleteSection1Input struct {
	EmployeeID string
}

// SubmitCompleteInput は一括提出時の入力です。
type SubmitCompleteInput struct {
	Submission Submission
}

// SubmitCompleteResult は一括提出の結果です。
type SubmitCompleteResult struct {
	Form            *Form
	Employee        *employee.Employee
	EmployeeCreated bool
	SMSSent         bool
}

// GetFormInput はフォーム取得時の入力です。
type GetFormInput struct {
	ID string
}

// ListFormsInput はフォーム一覧取得時の入力です。
type ListFormsInput struct {
	Status    *Status
	PageSize  int
	PageToken string
}

// ListFormsResult はフォーム一覧取得の結果です。
type ListFormsResult struct {
	Forms         []*Form
	NextPageToken string
}

// Stats は状態ごとのフォーム件数です。
type Stats struct {
	Total    int
	ByStatus map[Status]int
}

// SaveField は 1 項目を保存します。フォームがなければ既定値入りのフォームを作成してから保存します。
// 値の検証は行いません。HR に引き渡し済みのフォームは変更できません。
func (s *Service) SaveField(ctx context.Context, in SaveFieldInput) (*Form, error) {
	field, err := ParseField(in.FieldName)
	if err != nil {
		return nil, err
	}
	employeeID := strings.TrimSpace(in.EmployeeID)
	value := NormalizeValue(field, strings.TrimSpace(in.Value))

	var result *Form
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.employees.GetEmployee(txCtx, employee.GetEmployeeInput{ID: employeeID}); err != nil {
			return err
		}

		form, err := s.forms.FindByEmployeeID(txCtx, employeeID)
		if errors.Is(err, ErrFormNotFound) {
			form, err = s.createSkeleton(txCtx, employeeID)
		}
		if err != nil {
			return err
		}
		if form.Status.Submitted() {
			return fmt.Errorf("%w: status is %s", ErrAlreadySubmitted, form.Status)
		}

		updated, err := s.forms.UpdateField(txCtx, employeeID, field, value, s.clock.Now())
		if errors.Is(err, ErrStatusConflict) {
			return fmt.Errorf("%w: form was submitted concurrently", ErrAlreadySubmitted)
		}
		if err != nil {
			return err
		}
		result = updated
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Debug("i9 field saved",
		zap.String("employee_id", employeeID),
		zap.String("form_id", result.ID),
		zap.String("field", string(field)),
	)
	return result, nil
}

func (s *Service) createSkeleton(ctx context.Context, employeeID string) (*Form, error) {
	now := s.clock.Now()
	skeleton := Skeleton(employeeID)
	skeleton.CreatedAt = now
	skeleton.UpdatedAt = now

	created, err := s.forms.Create(ctx, skeleton)
	if errors.Is(err, ErrFormAlreadyExists) {
		return s.forms.FindByEmployeeID(ctx, employeeID)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("i9 form started", zap.String("employee_id", employeeID), zap.String("form_id", created.ID))
	return created, nil
}

// GetProgress はフォームの入力進捗を返します。フォームがなければ未着手として返します。
func (s *Service) GetProgress(ctx context.Context, in GetProgressInput) (*Progress, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("employee_id: %w", ErrInvalidID)
	}

	var form *Form
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.forms.FindByEmployeeID(txCtx, employeeID)
		if errors.Is(err, ErrFormNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		form = found
		return nil
	}); err != nil {
		return nil, err
	}

	progress := EvaluateProgress(form)
	return &progress, nil
}

// CompleteSection1 は必須項目がそろっていることを確認し、フォームを completed にします。
func (s *Service) CompleteSection1(ctx context.Context, in CompleteSection1Input) (*Form, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("employee_id: %w", ErrInvalidID)
	}

	var result *Form
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		form, err := s.forms.FindByEmployeeID(txCtx, employeeID)
		if err != nil {
			return err
		}

		updated, err := ApplyCompleteSection1(form, s.clock.Now())
		if err != nil {
			return err
		}

		saved, err := s.forms.Update(txCtx, updated, form.Status)
		if errors.Is(err, ErrStatusConflict) {
			return ConflictError(txCtx, s.forms, form.ID, ActionCompleteSection1)
		}
		if err != nil {
			return err
		}
		result = saved
		return nil
	})
	s.metrics.ObserveTransition(ActionCompleteSection1, OutcomeOf(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("i9 section 1 completed", zap.String("employee_id", employeeID), zap.String("form_id", result.ID))
	return result, nil
}

// SubmitComplete は全項目を一括で検証・保存し、フォームを completed にします。
// 保存後に提出完了の SMS を送りますが、送信の成否は提出結果に影響しません。
func (s *Service) SubmitComplete(ctx context.Context, in SubmitCompleteInput) (*SubmitCompleteResult, error) {
	now := s.clock.Now()
	if err := ValidateSubmission(in.Submission, now); err != nil {
		s.metrics.ObserveTransition(ActionCompleteSection1, OutcomeRejected)
		return nil, err
	}

	candidate := in.Submission.ToForm()
	var result SubmitCompleteResult

	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		email := candidate.Email
		resolved, err := s.employees.FindOrCreate(txCtx, employee.FindOrCreateInput{Phone: candidate.Phone, Email: &email})
		if err != nil {
			return err
		}
		result.Employee = resolved.Employee
		result.EmployeeCreated = resolved.Created

		candidate.EmployeeID = resolved.Employee.ID
		saved, err := s.saveSubmission(txCtx, candidate, now)
		if err != nil {
			return err
		}
		result.Form = saved
		return nil
	})
	s.metrics.ObserveTransition(ActionCompleteSection1, OutcomeOf(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("i9 form submitted",
		zap.String("employee_id", result.Employee.ID),
		zap.String("form_id", result.Form.ID),
		zap.Bool("employee_created", result.EmployeeCreated),
	)

	if s.notifier != nil {
		result.SMSSent = s.notifier.Submitted(ctx, result.Employee.Phone)
	}
	return &result, nil
}

func (s *Service) saveSubmission(ctx context.Context, candidate *Form, now time.Time) (*Form, error) {
	existing, err := s.forms.FindByEmployeeID(ctx, candidate.EmployeeID)
	if errors.Is(err, ErrFormNotFound) {
		fresh := candidate.Clone()
		fresh.Status = StatusCompleted
		fresh.CreatedAt = now
		markCompleted(fresh, now)

		created, createErr := s.forms.Create(ctx, fresh)
		if !errors.Is(createErr, ErrFormAlreadyExists) {
			return created, createErr
		}
		existing, err = s.forms.FindByEmployeeID(ctx, candidate.EmployeeID)
	}
	if err != nil {
		return nil, err
	}

	if existing.Status.Submitted() {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadySubmitted, existing.Status)
	}

	replacement := candidate.Clone()
	replacement.ID = existing.ID
	replacement.EmployeeID = existing.EmployeeID
	replacement.CreatedAt = existing.CreatedAt
	replacement.CompletedAt = cloneTime(existing.CompletedAt)
	replacement.EmployerNotes = existing.EmployerNotes
	replacement.EmployerReviewedAt = cloneTime(existing.EmployerReviewedAt)
	replacement.EmployerReviewedBy = existing.EmployerReviewedBy
	replacement.Status = StatusCompleted
	markCompleted(replacement, now)

	saved, err := s.forms.Update(ctx, replacement, existing.Status)
	if errors.Is(err, ErrStatusConflict) {
		return nil, fmt.Errorf("%w: form was submitted concurrently", ErrAlreadySubmitted)
	}
	return saved, err
}

// GetForm はフォームを取得します。
func (s *Service) GetForm(ctx context.Context, in GetFormInput) (*Form, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Form
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.forms.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// ListForms はフォームの一覧を更新日時の新しい順に取得します。
func (s *Service) ListForms(ctx context.Context, in ListFormsInput) (*ListFormsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var (
		forms     []*Form
		nextToken string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, token, err := s.forms.List(txCtx, ListFormsFilter{Status: statusPtr, Limit: limit, Offset: offset})
		if err != nil {
			return err
		}
		forms = found
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListFormsResult{Forms: forms, NextPageToken: nextToken}, nil
}

// Stats は状態ごとのフォーム件数を返します。
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var counts map[Status]int
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.forms.CountByStatus(txCtx)
		if err != nil {
			return err
		}
		counts = found
		return nil
	}); err != nil {
		return nil, err
	}

	stats := &Stats{ByStatus: make(map[Status]int, len(Statuses()))}
	for _, status := range Statuses() {
		n := counts[status]
		stats.ByStatus[status] = n
		stats.Total += n
	}
	return stats, nil
}

// ConflictError は条件付き更新に失敗した後でフォームを読み直し、
// 現在の状態に基づく遷移エラーを返します。
func ConflictError(ctx context.Context, forms Repository, formID string, action Action) error {
	current, err := forms.FindByID(ctx, formID)
	if err != nil {
		return err
	}
	if _, err := Transition(current.Status, action); err != nil {
		return err
	}
	return ErrStatusConflict
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
