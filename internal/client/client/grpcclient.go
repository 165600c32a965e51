package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var _ Client = (*GRPCClient)(nil)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      rpc.VaultServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the current token, if any, and applies the
// per-call timeout.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewVaultClient prepares a connection to endpointURL. The connection is
// lazy; the first RPC dials. Extra dial options are appended, which lets
// tests substitute an in-memory dialer.
func NewVaultClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(c.endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = rpc.NewVaultServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken replaces the token sent with every call. An empty token
// makes the client anonymous.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, userName string, salt, verifier []byte) error {
	req := &rpc.RegisterUserRequest{Username: userName, Salt: salt, Verifier: verifier}
	if _, err := s.client.RegisterUser(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	resp, err := s.client.GetSalt(ctx, &rpc.GetSaltRequest{Username: userName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

// Login exchanges a verifier for an access token and starts sending it.
func (s *GRPCClient) Login(ctx context.Context, userName string, verifier []byte) (string, error) {
	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Username: userName, Verifier: verifier})
	if err != nil {
		return "", s.mapError(err)
	}
	s.SetAccessToken(resp.AccessToken)
	return resp.AccessToken, nil
}

func (s *GRPCClient) AllocateUploadSlot(ctx context.Context) (*models.UploadSlot, error) {
	resp, err := s.client.AllocateUploadSlot(ctx, &rpc.AllocateUploadSlotRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &models.UploadSlot{
		URL:           resp.UploadURL,
		StorageHandle: resp.StorageHandle,
		ExpiresAt:     asTime(resp.ExpiresAt),
	}, nil
}

func (s *GRPCClient) RegisterFile(ctx context.Context, storageHandle, filename, mimeType string, size int64) (string, error) {
	resp, err := s.client.RegisterFile(ctx, &rpc.RegisterFileRequest{
		StorageHandle: storageHandle,
		Filename:      filename,
		MimeType:      mimeType,
		Size:          size,
	})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.ID, nil
}

func (s *GRPCClient) ListFiles(ctx context.Context) ([]*models.FileInfo, error) {
	resp, err := s.client.ListFiles(ctx, &rpc.ListFilesRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}

	out := make([]*models.FileInfo, 0, len(resp.Files))
	for _, f := range resp.Files {
		out = append(out, fileInfo(f))
	}
	return out, nil
}

func (s *GRPCClient) GetFileURL(ctx context.Context, handleOrID string) (string, *models.FileInfo, error) {
	resp, err := s.client.GetFileURL(ctx, &rpc.GetFileURLRequest{HandleOrID: handleOrID})
	if err != nil {
		return "", nil, s.mapError(err)
	}
	if resp.File == nil {
		return resp.URL, nil, nil
	}
	return resp.URL, fileInfo(resp.File), nil
}

func fileInfo(f *rpc.FileInfo) *models.FileInfo {
	return &models.FileInfo{
		ID:            f.ID,
		StorageHandle: f.StorageHandle,
		Filename:      f.Filename,
		MimeType:      f.MimeType,
		Size:          f.Size,
		CreatedAt:     asTime(f.CreatedAt),
	}
}

func asTime(ts *timestamppb.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.AsTime()
}

// mapError turns a gRPC status into the matching sentinel from
// internal/common. Validation messages keep their detail.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("rpc error: %w", err)
	}

	switch st.Code() {
	case codes.InvalidArgument:
		detail := strings.TrimPrefix(st.Message(), common.ErrValidation.Error()+": ")
		if detail == "" || detail == common.ErrValidation.Error() {
			return common.ErrValidation
		}
		return fmt.Errorf("%w: %s", common.ErrValidation, detail)
	case codes.Unauthenticated:
		if st.Message() == common.ErrTokenExpired.Error() {
			return common.ErrTokenExpired
		}
		return common.ErrUnauthorized
	case codes.PermissionDenied:
		return common.ErrAccessDenied
	case codes.FailedPrecondition:
		return common.ErrSlotExpired
	case codes.AlreadyExists:
		return common.ErrConflict
	case codes.Canceled:
		return context.Canceled
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
