package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/failvault/internal/logging"
	"github.com/dmitrijs2005/failvault/internal/models"
	pb "github.com/dmitrijs2005/failvault/internal/proto"
	"github.com/dmitrijs2005/failvault/internal/server/metrics"
	"google.golang.org/grpc"
)

type catalogSvc interface {
	List(ctx context.Context) ([]*models.Record, error)
	Create(ctx context.Context, d models.Draft) (*models.Record, error)
	Delete(ctx context.Context, id string) error
}

type adminSvc interface {
	IssueToken(ctx context.Context, address, message, signature string) (string, error)
}

type storageSvc interface {
	GetPresignedPutURL(ctx context.Context) (key, url, tokenURI string, err error)
}

type GRPCServer struct {
	pb.UnimplementedCatalogServiceServer
	address   string
	catalog   catalogSvc
	admin     adminSvc
	storage   storageSvc
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, cs catalogSvc, as adminSvc, ss storageSvc, m *metrics.Metrics, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		catalog:   cs,
		admin:     as,
		storage:   ss,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on an existing listener until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.loggingInterceptor,
		s.metricsInterceptor,
		s.accessTokenInterceptor,
	))

	pb.RegisterCatalogServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
