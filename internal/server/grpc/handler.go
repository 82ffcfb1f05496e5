package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/failvault/internal/common"
	pb "github.com/dmitrijs2005/failvault/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// toStatus maps service errors onto gRPC codes. Internal details are not
// sent to the caller.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrInvalidCategory),
		errors.Is(err, common.ErrInvalidPrice),
		errors.Is(err, common.ErrInvalidAddress):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrBadSignature),
		errors.Is(err, common.ErrStaleChallenge):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) Ping(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ListRecords(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	records, err := s.catalog.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list records failed", "error", err)
		return nil, toStatus(err)
	}

	if s.metrics != nil {
		s.metrics.SetCatalogSize(len(records))
	}
	return pb.RecordsToList(records), nil
}

func (s *GRPCServer) CreateRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	draft, err := pb.StructToDraft(req)
	if err != nil {
		return nil, toStatus(err)
	}

	rec, err := s.catalog.Create(ctx, draft)
	if err != nil {
		s.logger.Warn(ctx, "create record failed", "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Record created", "id", rec.ID, "category", string(rec.Category))
	return pb.RecordToStruct(rec), nil
}

func (s *GRPCServer) DeleteRecord(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id := req.GetValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	if err := s.catalog.Delete(ctx, id); err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Record deleted", "id", id, "admin", adminFromContext(ctx))
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) IssueAdminToken(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	proof := pb.StructToAdminProof(req)

	token, err := s.admin.IssueToken(ctx, proof.Address, proof.Message, proof.Signature)
	if err != nil {
		s.countAdmin("rejected")
		s.logger.Warn(ctx, "admin token refused", "address", proof.Address, "error", err)
		return nil, toStatus(err)
	}

	s.countAdmin("issued")
	return wrapperspb.String(token), nil
}

func (s *GRPCServer) GetPresignedPutURL(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	key, url, tokenURI, err := s.storage.GetPresignedPutURL(ctx)
	if err != nil {
		s.logger.Error(ctx, "presign failed", "error", err)
		return nil, toStatus(err)
	}
	return pb.UploadSlot{Key: key, URL: url, TokenURI: tokenURI}.ToStruct(), nil
}

func (s *GRPCServer) countAdmin(outcome string) {
	if s.metrics != nil {
		s.metrics.AdminTokenRequest(outcome)
	}
}
