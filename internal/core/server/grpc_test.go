package server

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/solatis/jsoncond/internal/core/api"
	"github.com/solatis/jsoncond/internal/core/auth"
	"github.com/solatis/jsoncond/internal/core/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// echoServer answers every method with its request and records the deadline
// it saw.
type echoServer struct {
	sawDeadline bool
}

func (e *echoServer) Check(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	_, e.sawDeadline = ctx.Deadline()
	return req, nil
}

func (e *echoServer) ToSQL(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return req, nil
}

func (e *echoServer) CheckStored(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return req, nil
}

func startTestServer(t *testing.T, cfg *config.ServiceConfig, authenticator *auth.Authenticator) (*grpc.ClientConn, *echoServer) {
	t.Helper()
	srv := &echoServer{}
	s, err := NewGRPCServer(cfg, srv, authenticator, nil)
	if err != nil {
		t.Fatalf("NewGRPCServer() error = %v", err)
	}

	lis := bufconn.Listen(4 << 20)
	go s.Serve(lis)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, srv
}

func TestNewGRPCServer_NilArgs(t *testing.T) {
	if _, err := NewGRPCServer(nil, &echoServer{}, nil, nil); err == nil {
		t.Error("NewGRPCServer(nil cfg) error = nil, want error")
	}
	if _, err := NewGRPCServer(config.DefaultServiceConfig(), nil, nil, nil); err == nil {
		t.Error("NewGRPCServer(nil service) error = nil, want error")
	}
}

func TestGRPCServer_ServesAndReportsHealth(t *testing.T) {
	conn, srv := startTestServer(t, config.DefaultServiceConfig(), nil)
	ctx := context.Background()

	req, _ := structpb.NewStruct(map[string]any{"condition": true})
	resp, err := api.NewClient(conn).Check(ctx, req)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !resp.GetFields()["condition"].GetBoolValue() {
		t.Errorf("Check() response = %v, want echo", resp)
	}
	if !srv.sawDeadline {
		t.Error("handler ran without the request deadline")
	}

	health := grpc_health_v1.NewHealthClient(conn)
	for _, service := range []string{"", api.ServiceName} {
		hr, err := health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
		if err != nil {
			t.Fatalf("health.Check(%q) error = %v", service, err)
		}
		if hr.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
			t.Errorf("health.Check(%q) = %v, want SERVING", service, hr.GetStatus())
		}
	}
}

func TestGRPCServer_PayloadLimit(t *testing.T) {
	cfg := config.DefaultServiceConfig()
	cfg.MaxPayloadBytes = 1024
	conn, _ := startTestServer(t, cfg, nil)

	req, _ := structpb.NewStruct(map[string]any{"data": strings.Repeat("x", 4096)})
	_, err := api.NewClient(conn).Check(context.Background(), req)
	if status.Code(err) != codes.ResourceExhausted {
		t.Errorf("Check(oversized) code = %v, want ResourceExhausted", status.Code(err))
	}
}

func TestGRPCServer_APIKey(t *testing.T) {
	authenticator, err := auth.NewAuthenticator("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	conn, _ := startTestServer(t, config.DefaultServiceConfig(), authenticator)
	client := api.NewClient(conn)
	req, _ := structpb.NewStruct(map[string]any{"condition": true})

	if _, err := client.ToSQL(context.Background(), req); status.Code(err) != codes.Unauthenticated {
		t.Errorf("ToSQL(no key) code = %v, want Unauthenticated", status.Code(err))
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), auth.MetadataKey, "s3cret")
	if _, err := client.ToSQL(ctx, req); err != nil {
		t.Errorf("ToSQL(valid key) error = %v", err)
	}

	// health stays open
	if _, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{}); err != nil {
		t.Errorf("health.Check(no key) error = %v", err)
	}
}

func TestLimitsInterceptor_Timeout(t *testing.T) {
	intercept := limitsInterceptor(10*time.Millisecond, 0)
	info := &grpc.UnaryServerInfo{FullMethod: api.CheckFullMethod}

	_, err := intercept(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		<-ctx.Done()
		return nil, status.FromContextError(ctx.Err()).Err()
	})
	if status.Code(err) != codes.DeadlineExceeded {
		t.Errorf("interceptor code = %v, want DeadlineExceeded", status.Code(err))
	}
}
