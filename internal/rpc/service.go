package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "docvault.v1.VaultService"

const (
	MethodPing               = "Ping"
	MethodRegisterUser       = "RegisterUser"
	MethodGetSalt            = "GetSalt"
	MethodLogin              = "Login"
	MethodAllocateUploadSlot = "AllocateUploadSlot"
	MethodRegisterFile       = "RegisterFile"
	MethodListFiles          = "ListFiles"
	MethodGetFileURL         = "GetFileURL"
)

// FullMethod returns the gRPC path of a VaultService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type VaultServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	AllocateUploadSlot(context.Context, *AllocateUploadSlotRequest) (*AllocateUploadSlotResponse, error)
	RegisterFile(context.Context, *RegisterFileRequest) (*RegisterFileResponse, error)
	ListFiles(context.Context, *ListFilesRequest) (*ListFilesResponse, error)
	GetFileURL(context.Context, *GetFileURLRequest) (*GetFileURLResponse, error)
}

// UnimplementedVaultServiceServer answers every method with
// codes.Unimplemented. Embed it to stay forward compatible.
type UnimplementedVaultServiceServer struct{}

func (UnimplementedVaultServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedVaultServiceServer) RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterUser not implemented")
}
func (UnimplementedVaultServiceServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSalt not implemented")
}
func (UnimplementedVaultServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedVaultServiceServer) AllocateUploadSlot(context.Context, *AllocateUploadSlotRequest) (*AllocateUploadSlotResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AllocateUploadSlot not implemented")
}
func (UnimplementedVaultServiceServer) RegisterFile(context.Context, *RegisterFileRequest) (*RegisterFileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterFile not implemented")
}
func (UnimplementedVaultServiceServer) ListFiles(context.Context, *ListFilesRequest) (*ListFilesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListFiles not implemented")
}
func (UnimplementedVaultServiceServer) GetFileURL(context.Context, *GetFileURLRequest) (*GetFileURLResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetFileURL not implemented")
}

func unaryHandler[Req, Resp any](method string, call func(VaultServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(VaultServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		})
	}
}

var VaultServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodPing, Handler: unaryHandler(MethodPing, VaultServiceServer.Ping)},
		{MethodName: MethodRegisterUser, Handler: unaryHandler(MethodRegisterUser, VaultServiceServer.RegisterUser)},
		{MethodName: MethodGetSalt, Handler: unaryHandler(MethodGetSalt, VaultServiceServer.GetSalt)},
		{MethodName: MethodLogin, Handler: unaryHandler(MethodLogin, VaultServiceServer.Login)},
		{MethodName: MethodAllocateUploadSlot, Handler: unaryHandler(MethodAllocateUploadSlot, VaultServiceServer.AllocateUploadSlot)},
		{MethodName: MethodRegisterFile, Handler: unaryHandler(MethodRegisterFile, VaultServiceServer.RegisterFile)},
		{MethodName: MethodListFiles, Handler: unaryHandler(MethodListFiles, VaultServiceServer.ListFiles)},
		{MethodName: MethodGetFileURL, Handler: unaryHandler(MethodGetFileURL, VaultServiceServer.GetFileURL)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "docvault/v1/vault",
}

func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&VaultServiceDesc, srv)
}

type VaultServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error)
	GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	AllocateUploadSlot(ctx context.Context, in *AllocateUploadSlotRequest, opts ...grpc.CallOption) (*AllocateUploadSlotResponse, error)
	RegisterFile(ctx context.Context, in *RegisterFileRequest, opts ...grpc.CallOption) (*RegisterFileResponse, error)
	ListFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error)
	GetFileURL(ctx context.Context, in *GetFileURLRequest, opts ...grpc.CallOption) (*GetFileURLResponse, error)
}

type vaultServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultServiceClient(cc grpc.ClientConnInterface) VaultServiceClient {
	return &vaultServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *vaultServiceClient) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error) {
	return invoke[RegisterUserResponse](ctx, c.cc, MethodRegisterUser, in, opts)
}

func (c *vaultServiceClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, MethodGetSalt, in, opts)
}

func (c *vaultServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *vaultServiceClient) AllocateUploadSlot(ctx context.Context, in *AllocateUploadSlotRequest, opts ...grpc.CallOption) (*AllocateUploadSlotResponse, error) {
	return invoke[AllocateUploadSlotResponse](ctx, c.cc, MethodAllocateUploadSlot, in, opts)
}

func (c *vaultServiceClient) RegisterFile(ctx context.Context, in *RegisterFileRequest, opts ...grpc.CallOption) (*RegisterFileResponse, error) {
	return invoke[RegisterFileResponse](ctx, c.cc, MethodRegisterFile, in, opts)
}

func (c *vaultServiceClient) ListFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error) {
	return invoke[ListFilesResponse](ctx, c.cc, MethodListFiles, in, opts)
}

func (c *vaultServiceClient) GetFileURL(ctx context.Context, in *GetFileURLRequest, opts ...grpc.CallOption) (*GetFileURLResponse, error) {
	return invoke[GetFileURLResponse](ctx, c.cc, MethodGetFileURL, in, opts)
}
