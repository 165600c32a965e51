package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/rpc"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// toStatus maps service errors to gRPC statuses. Internal error text never
// reaches the caller.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "not authenticated")
	case errors.Is(err, common.ErrAccessDenied):
		return status.Error(codes.PermissionDenied, common.ErrAccessDenied.Error())
	case errors.Is(err, common.ErrSlotExpired):
		return status.Error(codes.FailedPrecondition, common.ErrSlotExpired.Error())
	case errors.Is(err, common.ErrConflict):
		return status.Error(codes.AlreadyExists, common.ErrConflict.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	s.logger.Error(ctx, op+" failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func fileInfo(rec *models.FileRecord) *rpc.FileInfo {
	return &rpc.FileInfo{
		ID:            rec.ID,
		StorageHandle: rec.StorageHandle,
		Filename:      rec.Filename,
		MimeType:      rec.MimeType,
		Size:          rec.Size,
		CreatedAt:     timestamppb.New(rec.CreatedAt),
	}
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *rpc.RegisterUserRequest) (*rpc.RegisterUserResponse, error) {
	u, err := s.users.Register(ctx, req.Username, req.Salt, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, "register user", err)
	}
	return &rpc.RegisterUserResponse{UserID: u.ID}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *rpc.GetSaltRequest) (*rpc.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, "get salt", err)
	}
	return &rpc.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	token, err := s.users.Login(ctx, req.Username, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}
	return &rpc.LoginResponse{AccessToken: token}, nil
}

func (s *GRPCServer) AllocateUploadSlot(ctx context.Context, req *rpc.AllocateUploadSlotRequest) (*rpc.AllocateUploadSlotResponse, error) {
	slot, err := s.vault.AllocateSlot(ctx, userIDFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, "allocate slot", err)
	}
	return &rpc.AllocateUploadSlotResponse{
		UploadURL:     slot.URL,
		StorageHandle: slot.StorageHandle,
		ExpiresAt:     timestamppb.New(slot.ExpiresAt),
	}, nil
}

func (s *GRPCServer) RegisterFile(ctx context.Context, req *rpc.RegisterFileRequest) (*rpc.RegisterFileResponse, error) {
	rec, err := s.vault.RegisterFile(ctx, userIDFromContext(ctx), services.RegisterInput{
		StorageHandle: req.StorageHandle,
		Filename:      req.Filename,
		MimeType:      req.MimeType,
		Size:          req.Size,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "register file", err)
	}
	return &rpc.RegisterFileResponse{ID: rec.ID}, nil
}

func (s *GRPCServer) ListFiles(ctx context.Context, req *rpc.ListFilesRequest) (*rpc.ListFilesResponse, error) {
	recs, err := s.vault.List(ctx, userIDFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, "list files", err)
	}

	out := make([]*rpc.FileInfo, 0, len(recs))
	for _, r := range recs {
		out = append(out, fileInfo(r))
	}
	return &rpc.ListFilesResponse{Files: out}, nil
}

func (s *GRPCServer) GetFileURL(ctx context.Context, req *rpc.GetFileURLRequest) (*rpc.GetFileURLResponse, error) {
	url, rec, err := s.vault.FetchURL(ctx, userIDFromContext(ctx), req.HandleOrID)
	if err != nil {
		return nil, s.toStatus(ctx, "get file url", err)
	}
	return &rpc.GetFileURLResponse{URL: url, File: fileInfo(rec)}, nil
}
