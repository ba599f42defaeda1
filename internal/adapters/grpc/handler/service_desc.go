package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// LifecycleServiceName は gRPC のサービス名です。
const LifecycleServiceName = "hr.lifecycle.v1.LifecycleService"

// メソッド名。
const (
	MethodApproveResignation    = "ApproveResignation"
	MethodRejectResignation     = "RejectResignation"
	MethodReinstateEmployee     = "ReinstateEmployee"
	MethodPurgeArchivedEmployee = "PurgeArchivedEmployee"
	MethodApproveLeave          = "ApproveLeave"
	MethodRejectLeave           = "RejectLeave"
	MethodClockIn               = "ClockIn"
	MethodClockOut              = "ClockOut"
	MethodListNotifications     = "ListNotifications"
	MethodMarkNotificationRead  = "MarkNotificationRead"
)

// LifecycleServiceServer は LifecycleService のサーバー実装が満たすインターフェースです。
// リクエストとレスポンスはいずれも google.protobuf.Struct です。
type LifecycleServiceServer interface {
	ApproveResignation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RejectResignation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReinstateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PurgeArchivedEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApproveLeave(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RejectLeave(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClockIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClockOut(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListNotifications(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MarkNotificationRead(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(LifecycleServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// LifecycleServiceDesc は LifecycleService の grpc.ServiceDesc です。
var LifecycleServiceDesc = grpc.ServiceDesc{
	ServiceName: LifecycleServiceName,
	HandlerType: (*LifecycleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(MethodApproveResignation, LifecycleServiceServer.ApproveResignation),
		method(MethodRejectResignation, LifecycleServiceServer.RejectResignation),
		method(MethodReinstateEmployee, LifecycleServiceServer.ReinstateEmployee),
		method(MethodPurgeArchivedEmployee, LifecycleServiceServer.PurgeArchivedEmployee),
		method(MethodApproveLeave, LifecycleServiceServer.ApproveLeave),
		method(MethodRejectLeave, LifecycleServiceServer.RejectLeave),
		method(MethodClockIn, LifecycleServiceServer.ClockIn),
		method(MethodClockOut, LifecycleServiceServer.ClockOut),
		method(MethodListNotifications, LifecycleServiceServer.ListNotifications),
		method(MethodMarkNotificationRead, LifecycleServiceServer.MarkNotificationRead),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hr/lifecycle/v1/lifecycle.proto",
}

// RegisterLifecycleServiceServer は srv を s に登録します。
func RegisterLifecycleServiceServer(s grpc.ServiceRegistrar, srv LifecycleServiceServer) {
	s.RegisterService(&LifecycleServiceDesc, srv)
}

func method(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + LifecycleServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LifecycleServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(LifecycleServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// LifecycleClient は LifecycleService のクライアントです。
type LifecycleClient struct {
	cc grpc.ClientConnInterface
}

// NewLifecycleClient は LifecycleClient を生成します。
func NewLifecycleClient(cc grpc.ClientConnInterface) *LifecycleClient {
	return &LifecycleClient{cc: cc}
}

// Call は指定メソッドを呼び出します。
func (c *LifecycleClient) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+LifecycleServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
