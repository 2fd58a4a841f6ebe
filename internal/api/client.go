package api

import (
	"context"

	"google.golang.org/grpc"
)

// TaskKeeperClient is the client API of the TaskKeeper service.
type TaskKeeperClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*RefreshResponse, error)
	Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*User, error)
	CreateTodo(ctx context.Context, in *CreateTodoRequest, opts ...grpc.CallOption) (*Todo, error)
	ListTodos(ctx context.Context, in *ListTodosRequest, opts ...grpc.CallOption) (*ListTodosResponse, error)
	GetTodo(ctx context.Context, in *GetTodoRequest, opts ...grpc.CallOption) (*Todo, error)
	UpdateTodo(ctx context.Context, in *UpdateTodoRequest, opts ...grpc.CallOption) (*Todo, error)
	DeleteTodo(ctx context.Context, in *DeleteTodoRequest, opts ...grpc.CallOption) (*DeleteTodoResponse, error)
	AttachmentUploadURL(ctx context.Context, in *AttachmentRequest, opts ...grpc.CallOption) (*AttachmentResponse, error)
	AttachmentDownloadURL(ctx context.Context, in *AttachmentRequest, opts ...grpc.CallOption) (*AttachmentResponse, error)
}

type taskKeeperClient struct {
	cc grpc.ClientConnInterface
}

func NewTaskKeeperClient(cc grpc.ClientConnInterface) TaskKeeperClient {
	return &taskKeeperClient{cc: cc}
}

// invoke sends in under the JSON content-subtype and decodes into a new Resp.
func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *taskKeeperClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *taskKeeperClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *taskKeeperClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*RefreshResponse, error) {
	return invoke[RefreshResponse](ctx, c.cc, MethodRefresh, in, opts)
}

func (c *taskKeeperClient) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodMe, in, opts)
}

func (c *taskKeeperClient) CreateTodo(ctx context.Context, in *CreateTodoRequest, opts ...grpc.CallOption) (*Todo, error) {
	return invoke[Todo](ctx, c.cc, MethodCreateTodo, in, opts)
}

func (c *taskKeeperClient) ListTodos(ctx context.Context, in *ListTodosRequest, opts ...grpc.CallOption) (*ListTodosResponse, error) {
	return invoke[ListTodosResponse](ctx, c.cc, MethodListTodos, in, opts)
}

func (c *taskKeeperClient) GetTodo(ctx context.Context, in *GetTodoRequest, opts ...grpc.CallOption) (*Todo, error) {
	return invoke[Todo](ctx, c.cc, MethodGetTodo, in, opts)
}

func (c *taskKeeperClient) UpdateTodo(ctx context.Context, in *UpdateTodoRequest, opts ...grpc.CallOption) (*Todo, error) {
	return invoke[Todo](ctx, c.cc, MethodUpdateTodo, in, opts)
}

func (c *taskKeeperClient) DeleteTodo(ctx context.Context, in *DeleteTodoRequest, opts ...grpc.CallOption) (*DeleteTodoResponse, error) {
	return invoke[DeleteTodoResponse](ctx, c.cc, MethodDeleteTodo, in, opts)
}

func (c *taskKeeperClient) AttachmentUploadURL(ctx context.Context, in *AttachmentRequest, opts ...grpc.CallOption) (*AttachmentResponse, error) {
	return invoke[AttachmentResponse](ctx, c.cc, MethodAttachmentUploadURL, in, opts)
}

func (c *taskKeeperClient) AttachmentDownloadURL(ctx context.Context, in *AttachmentRequest, opts ...grpc.CallOption) (*AttachmentResponse, error) {
	return invoke[AttachmentResponse](ctx, c.cc, MethodAttachmentDownloadURL, in, opts)
}
