// Package reviewrpc は HR 向け ReviewService の gRPC サービス定義とクライアントです。
// リクエストとレスポンスは google.protobuf.Struct で表現します。
package reviewrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName は ReviewService の完全修飾名です。
const ServiceName = "i9.v1.ReviewService"

// メソッドの完全修飾名です。
const (
	GetFormFullMethodName             = "/" + ServiceName + "/GetForm"
	ListFormsFullMethodName           = "/" + ServiceName + "/ListForms"
	GetStatsFullMethodName            = "/" + ServiceName + "/GetStats"
	ApproveDataFullMethodName         = "/" + ServiceName + "/ApproveData"
	ResendApprovalFullMethodName      = "/" + ServiceName + "/ResendApproval"
	RequestCorrectionsFullMethodName  = "/" + ServiceName + "/RequestCorrections"
	VerifyFinalFullMethodName         = "/" + ServiceName + "/VerifyFinal"
	OverrideStatusFullMethodName      = "/" + ServiceName + "/OverrideStatus"
	UpdateEmployeeEmailFullMethodName = "/" + ServiceName + "/UpdateEmployeeEmail"
	DeleteEmployeeFullMethodName      = "/" + ServiceName + "/DeleteEmployee"
)

// ReviewServiceServer は ReviewService のサーバー側インターフェースです。
type ReviewServiceServer interface {
	GetForm(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListForms(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ApproveData(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResendApproval(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RequestCorrections(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyFinal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OverrideStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployeeEmail(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// RegisterReviewServiceServer はサーバーに ReviewService を登録します。
func RegisterReviewServiceServer(s grpc.ServiceRegistrar, srv ReviewServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req proto.Message, Resp proto.Message](fullMethod string, newReq func() Req, call func(ReviewServiceServer, context.Context, Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReviewServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReviewServiceServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }

func newEmpty() *emptypb.Empty { return &emptypb.Empty{} }

// ServiceDesc は ReviewService の grpc.ServiceDesc です。
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReviewServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetForm", Handler: unary(GetFormFullMethodName, newStruct, ReviewServiceServer.GetForm)},
		{MethodName: "ListForms", Handler: unary(ListFormsFullMethodName, newStruct, ReviewServiceServer.ListForms)},
		{MethodName: "GetStats", Handler: unary(GetStatsFullMethodName, newEmpty, ReviewServiceServer.GetStats)},
		{MethodName: "ApproveData", Handler: unary(ApproveDataFullMethodName, newStruct, ReviewServiceServer.ApproveData)},
		{MethodName: "ResendApproval", Handler: unary(ResendApprovalFullMethodName, newStruct, ReviewServiceServer.ResendApproval)},
		{MethodName: "RequestCorrections", Handler: unary(RequestCorrectionsFullMethodName, newStruct, ReviewServiceServer.RequestCorrections)},
		{MethodName: "VerifyFinal", Handler: unary(VerifyFinalFullMethodName, newStruct, ReviewServiceServer.VerifyFinal)},
		{MethodName: "OverrideStatus", Handler: unary(OverrideStatusFullMethodName, newStruct, ReviewServiceServer.OverrideStatus)},
		{MethodName: "UpdateEmployeeEmail", Handler: unary(UpdateEmployeeEmailFullMethodName, newStruct, ReviewServiceServer.UpdateEmployeeEmail)},
		{MethodName: "DeleteEmployee", Handler: unary(DeleteEmployeeFullMethodName, newStruct, ReviewServiceServer.DeleteEmployee)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "i9/v1/review.proto",
}

// ReviewServiceClient は ReviewService のクライアントです。
type ReviewServiceClient interface {
	GetForm(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListForms(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ApproveData(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ResendApproval(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RequestCorrections(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	VerifyFinal(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	OverrideStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateEmployeeEmail(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteEmployee(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type reviewServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewReviewServiceClient は接続から ReviewServiceClient を生成します。
func NewReviewServiceClient(cc grpc.ClientConnInterface) ReviewServiceClient {
	return &reviewServiceClient{cc: cc}
}

func (c *reviewServiceClient) invokeStruct(ctx context.Context, method string, in proto.Message, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reviewServiceClient) GetForm(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, GetFormFullMethodName, in, opts)
}

func (c *reviewServiceClient) ListForms(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, ListFormsFullMethodName, in, opts)
}

func (c *reviewServiceClient) GetStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, GetStatsFullMethodName, in, opts)
}

func (c *reviewServiceClient) ApproveData(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, ApproveDataFullMethodName, in, opts)
}

func (c *reviewServiceClient) ResendApproval(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, ResendApprovalFullMethodName, in, opts)
}

func (c *reviewServiceClient) RequestCorrections(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, RequestCorrectionsFullMethodName, in, opts)
}

func (c *reviewServiceClient) VerifyFinal(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, VerifyFinalFullMethodName, in, opts)
}

func (c *reviewServiceClient) OverrideStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, OverrideStatusFullMethodName, in, opts)
}

func (c *reviewServiceClient) UpdateEmployeeEmail(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, UpdateEmployeeEmailFullMethodName, in, opts)
}

func (c *reviewServiceClient) DeleteEmployee(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, DeleteEmployeeFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
