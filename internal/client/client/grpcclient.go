package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/models"
	pb "github.com/dmitrijs2005/failvault/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.CatalogServiceClient

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

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if tok := s.token(); tok != "" {
		ctx = withAccessToken(ctx, tok)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)

	// An expired admin token is dropped so the caller is asked to sign in again.
	if status.Code(err) == codes.Unauthenticated && status.Convert(err).Message() == common.ErrTokenExpired.Error() {
		s.SignOutAdmin()
	}
	return err
}

func NewCatalogClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewCatalogServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	if _, err := s.client.Ping(ctx, &emptypb.Empty{}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListRecords(ctx context.Context) ([]*models.Record, error) {
	resp, err := s.client.ListRecords(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return pb.ListToRecords(resp)
}

func (s *GRPCClient) CreateRecord(ctx context.Context, d models.Draft) (*models.Record, error) {
	resp, err := s.client.CreateRecord(ctx, pb.DraftToStruct(d))
	if err != nil {
		return nil, s.mapError(err)
	}
	return pb.StructToRecord(resp)
}

func (s *GRPCClient) DeleteRecord(ctx context.Context, id string) error {
	if _, err := s.client.DeleteRecord(ctx, wrapperspb.String(id)); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) SignInAdmin(ctx context.Context, proof pb.AdminProof) error {
	resp, err := s.client.IssueAdminToken(ctx, proof.ToStruct())
	if err != nil {
		return s.mapError(err)
	}

	s.mu.Lock()
	s.accessToken = resp.GetValue()
	s.mu.Unlock()
	return nil
}

func (s *GRPCClient) SignOutAdmin() {
	s.mu.Lock()
	s.accessToken = ""
	s.mu.Unlock()
}

func (s *GRPCClient) HasAdminToken() bool { return s.token() != "" }

func (s *GRPCClient) GetUploadSlot(ctx context.Context) (pb.UploadSlot, error) {
	resp, err := s.client.GetPresignedPutURL(ctx, &emptypb.Empty{})
	if err != nil {
		return pb.UploadSlot{}, s.mapError(err)
	}
	return pb.StructToUploadSlot(resp), nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
