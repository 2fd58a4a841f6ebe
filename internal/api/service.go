package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "taskkeeper.v1.TaskKeeper"

// Full method names, as seen by interceptors.
const (
	MethodRegister   = "/" + ServiceName + "/Register"
	MethodLogin      = "/" + ServiceName + "/Login"
	MethodRefresh    = "/" + ServiceName + "/Refresh"
	MethodMe         = "/" + ServiceName + "/Me"
	MethodCreateTodo = "/" + ServiceName + "/CreateTodo"
	MethodListTodos  = "/" + ServiceName + "/ListTodos"
	MethodGetTodo    = "/" + ServiceName + "/GetTodo"
	MethodUpdateTodo = "/" + ServiceName + "/UpdateTodo"
	MethodDeleteTodo = "/" + ServiceName + "/DeleteTodo"

	MethodAttachmentUploadURL   = "/" + ServiceName + "/AttachmentUploadURL"
	MethodAttachmentDownloadURL = "/" + ServiceName + "/AttachmentDownloadURL"
)

// TaskKeeperServer is the server API of the TaskKeeper service.
type TaskKeeperServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error)
	Me(context.Context, *MeRequest) (*User, error)
	CreateTodo(context.Context, *CreateTodoRequest) (*Todo, error)
	ListTodos(context.Context, *ListTodosRequest) (*ListTodosResponse, error)
	GetTodo(context.Context, *GetTodoRequest) (*Todo, error)
	UpdateTodo(context.Context, *UpdateTodoRequest) (*Todo, error)
	DeleteTodo(context.Context, *DeleteTodoRequest) (*DeleteTodoResponse, error)
	AttachmentUploadURL(context.Context, *AttachmentRequest) (*AttachmentResponse, error)
	AttachmentDownloadURL(context.Context, *AttachmentRequest) (*AttachmentResponse, error)
}

func RegisterTaskKeeperServer(s grpc.ServiceRegistrar, srv TaskKeeperServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds a grpc.MethodHandler for one method.
func unary[Req any, Resp any](fullMethod string, call func(TaskKeeperServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TaskKeeperServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TaskKeeperServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for the TaskKeeper service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TaskKeeperServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(MethodRegister, TaskKeeperServer.Register)},
		{MethodName: "Login", Handler: unary(MethodLogin, TaskKeeperServer.Login)},
		{MethodName: "Refresh", Handler: unary(MethodRefresh, TaskKeeperServer.Refresh)},
		{MethodName: "Me", Handler: unary(MethodMe, TaskKeeperServer.Me)},
		{MethodName: "CreateTodo", Handler: unary(MethodCreateTodo, TaskKeeperServer.CreateTodo)},
		{MethodName: "ListTodos", Handler: unary(MethodListTodos, TaskKeeperServer.ListTodos)},
		{MethodName: "GetTodo", Handler: unary(MethodGetTodo, TaskKeeperServer.GetTodo)},
		{MethodName: "UpdateTodo", Handler: unary(MethodUpdateTodo, TaskKeeperServer.UpdateTodo)},
		{MethodName: "DeleteTodo", Handler: unary(MethodDeleteTodo, TaskKeeperServer.DeleteTodo)},
		{MethodName: "AttachmentUploadURL", Handler: unary(MethodAttachmentUploadURL, TaskKeeperServer.AttachmentUploadURL)},
		{MethodName: "AttachmentDownloadURL", Handler: unary(MethodAttachmentDownloadURL, TaskKeeperServer.AttachmentDownloadURL)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskkeeper/v1/taskkeeper",
}
