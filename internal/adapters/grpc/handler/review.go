package handler

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/AshithaPGowda/code-challenge/internal/adapters/grpc/reviewrpc"
	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/review"
)

// FormQueries は HR ダッシュボード向けの参照操作です。
type FormQueries interface {
	GetForm(ctx context.Context, in i9.GetFormInput) (*i9.Form, error)
	ListForms(ctx context.Context, in i9.ListFormsInput) (*i9.ListFormsResult, error)
	Stats(ctx context.Context) (*i9.Stats, error)
}

// ReviewActions は HR の確認操作です。
type ReviewActions interface {
	ApproveData(ctx context.Context, in review.ApproveDataInput) (*review.ApproveDataResult, error)
	ResendApproval(ctx context.Context, in review.ResendApprovalInput) (*review.ApproveDataResult, error)
	RequestCorrections(ctx context.Context, in review.RequestCorrectionsInput) (*review.RequestCorrectionsResult, error)
	VerifyFinal(ctx context.Context, in review.VerifyFinalInput) (*i9.Form, error)
	OverrideStatus(ctx context.Context, in review.OverrideStatusInput) (*i9.Form, error)
}

// EmployeeAdmin は HR による従業員情報の変更と削除です。
type EmployeeAdmin interface {
	UpdateEmail(ctx context.Context, in employee.UpdateEmailInput) (*employee.Employee, error)
	DeleteEmployee(ctx context.Context, in employee.DeleteEmployeeInput) error
}

// ReviewGrpcHandler は ReviewService の gRPC 実装です。
type ReviewGrpcHandler struct {
	forms     FormQueries
	review    ReviewActions
	employees EmployeeAdmin
	logger    *zap.Logger
}

var _ reviewrpc.ReviewServiceServer = (*ReviewGrpcHandler)(nil)

// NewReviewGrpcHandler は ReviewGrpcHandler を生成します。
func NewReviewGrpcHandler(forms FormQueries, review ReviewActions, employees EmployeeAdmin, logger *zap.Logger) *ReviewGrpcHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewGrpcHandler{forms: forms, review: review, employees: employees, logger: logger}
}

// fail はエラーを gRPC ステータスに変換します。内部エラーの詳細はログにだけ残します。
func (h *ReviewGrpcHandler) fail(ctx context.Context, err error) error {
	st := toStatusError(err)
	if status.Code(st) == codes.Internal {
		method, _ := grpc.Method(ctx)
		h.logger.Error("review rpc failed", zap.String("method", method), zap.Error(err))
	}
	return st
}

// GetForm はフォームを 1 件返します。
func (h *ReviewGrpcHandler) GetForm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}
	form, err := h.forms.GetForm(ctx, i9.GetFormInput{ID: id})
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return toStruct(map[string]any{"form": form.Record()})
}

// ListForms はフォームを新しい順に返します。status で絞り込めます。
func (h *ReviewGrpcHandler) ListForms(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := i9.ListFormsInput{
		PageSize:  intField(req, "page_size"),
		PageToken: stringField(req, "page_token"),
	}
	if raw := stringField(req, "status"); raw != "" {
		st := i9.Status(raw)
		in.Status = &st
	}

	res, err := h.forms.ListForms(ctx, in)
	if err != nil {
		return nil, h.fail(ctx, err)
	}

	forms := make([]any, 0, len(res.Forms))
	for _, f := range res.Forms {
		forms = append(forms, f.Record())
	}
	return toStruct(map[string]any{
		"forms":           forms,
		"next_page_token": res.NextPageToken,
	})
}

// GetStats は状態ごとの件数を返します。
func (h *ReviewGrpcHandler) GetStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stats, err := h.forms.Stats(ctx)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	byStatus := make(map[string]any, len(stats.ByStatus))
	for _, st := range i9.Statuses() {
		byStatus[string(st)] = stats.ByStatus[st]
	}
	return toStruct(map[string]any{"total": stats.Total, "by_status": byStatus})
}

// ApproveData はデータを承認します。
func (h *ReviewGrpcHandler) ApproveData(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}
	res, err := h.review.ApproveData(ctx, review.ApproveDataInput{ID: id, Reviewer: stringField(req, "reviewer")})
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return approvalStruct(res)
}

// ResendApproval は承認書類と通知を再送します。
func (h *ReviewGrpcHandler) ResendApproval(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}
	res, err := h.review.ResendApproval(ctx, review.ResendApprovalInput{ID: id})
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return approvalStruct(res)
}

func approvalStruct(res *review.ApproveDataResult) (*structpb.Struct, error) {
	return toStruct(map[string]any{
		"form":          res.Form.Record(),
		"pdf_generated": res.PDFGenerated,
		"pdf_url":       res.PDFURL,
		"sms_sent":      res.SMSSent,
		"recipient":     res.Recipient,
	})
}

// RequestCorrections は修正を依頼します。notes は必須です。
func (h *ReviewGrpcHandler) RequestCorrections(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}
	res, err := h.review.RequestCorrections(ctx, review.RequestCorrectionsInput{
		ID:       id,
		Reviewer: stringField(req, "reviewer"),
		Notes:    stringField(req, "notes"),
	})
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return toStruct(map[string]any{
		"form":      res.Form.Record(),
		"sms_sent":  res.SMSSent,
		"recipient": res.Recipient,
	})
}

// VerifyFinal は最終確認を記録します。
func (h *ReviewGrpcHandler) VerifyFinal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}
	form, err := h.review.VerifyFinal(ctx, review.VerifyFinalInput{ID: id, Reviewer: stringField(req, "reviewer")})
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return toStruct(map[string]any{"form": form.Record()})
}

// OverrideStatus は状態を直接変更します。設定で許可されている場合のみ使えます。
func (h *ReviewGrpcHandler) OverrideStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}
	st, err := requiredString(req, "status")
	if err != nil {
		return nil, err
	}
	form, err := h.review.OverrideStatus(ctx, review.OverrideStatusInput{
		ID:       id,
		Status:   i9.Status(st),
		Reviewer: stringField(req, "reviewer"),
	})
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return toStruct(map[string]any{"form": form.Record()})
}

// UpdateEmployeeEmail は従業員のメールアドレスを変更します。email が空なら登録を消します。
func (h *ReviewGrpcHandler) UpdateEmployeeEmail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}
	emp, err := h.employees.UpdateEmail(ctx, employee.UpdateEmailInput{ID: id, Email: stringField(req, "email")})
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return toStruct(map[string]any{"employee": emp.Record()})
}

// DeleteEmployee は従業員とそのフォームを削除します。
func (h *ReviewGrpcHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}
	if err := h.employees.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: id}); err != nil {
		return nil, h.fail(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func stringField(req *structpb.Struct, key string) string {
	if req == nil {
		return ""
	}
	v, ok := req.GetFields()[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

func intField(req *structpb.Struct, key string) int {
	if req == nil {
		return 0
	}
	v, ok := req.GetFields()[key]
	if !ok {
		return 0
	}
	return int(v.GetNumberValue())
}

func requiredString(req *structpb.Struct, key string) (string, error) {
	if req == nil {
		return "", status.Error(codes.InvalidArgument, "request is required")
	}
	v := stringField(req, key)
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return v, nil
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return s, nil
}
