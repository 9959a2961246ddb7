package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

var unaryInfo = &grpc.UnaryServerInfo{FullMethod: "/lox.v1.Frontend/Process"}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(mdwlog.Discard())
	_, err := interceptor(context.Background(), nil, unaryInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Errorf("status = %v, want Internal", status.Code(err))
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		wantSame string
	}{
		{"generated", context.Background(), ""},
		{"from metadata", metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-42")), "req-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			_, err := RequestIDInterceptor()(tt.ctx, nil, unaryInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
				seen = GetRequestID(ctx)
				return nil, nil
			})
			if err != nil {
				t.Fatalf("interceptor error = %v", err)
			}
			if seen == "" {
				t.Fatal("request id missing in handler context")
			}
			if tt.wantSame != "" && seen != tt.wantSame {
				t.Errorf("request id = %q, want %q", seen, tt.wantSame)
			}
			if tt.wantSame == "" && len(seen) != 36 {
				t.Errorf("generated id %q is not a uuid", seen)
			}
		})
	}
}

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if GetRequestID(ctx) != "abc" {
		t.Errorf("GetRequestID() = %q", GetRequestID(ctx))
	}
	if GetRequestID(context.Background()) != "" {
		t.Error("empty context should have no request id")
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code mdwerror.Code
		want codes.Code
	}{
		{mdwerror.CodeParseError, codes.InvalidArgument},
		{mdwerror.CodeLexError, codes.InvalidArgument},
		{mdwerror.CodeAllocation, codes.ResourceExhausted},
		{mdwerror.CodeNotFound, codes.NotFound},
		{mdwerror.CodeTimeout, codes.DeadlineExceeded},
		{mdwerror.CodeInternal, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := StatusCode(tt.code); got != tt.want {
				t.Errorf("StatusCode(%s) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestToStatus(t *testing.T) {
	if ToStatus(nil) != nil {
		t.Error("ToStatus(nil) should be nil")
	}

	err := ToStatus(mdwerror.New("bad input").WithCode(mdwerror.CodeParseError))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("status = %v, want InvalidArgument", status.Code(err))
	}

	orig := status.Error(codes.Aborted, "aborted")
	if !errors.Is(ToStatus(orig), orig) {
		t.Error("status errors should pass through unchanged")
	}
}

func TestServer_Health(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)
	cfg := DefaultServerConfig("bufnet")
	cfg.Logger = mdwlog.Discard()
	srv := NewServer(cfg)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	clientCfg := DefaultClientConfig("passthrough:///bufnet")
	clientCfg.Logger = mdwlog.Discard()
	clientCfg.Dialer = func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}
	conn, err := Dial(clientCfg)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("health = %v, want SERVING", resp.GetStatus())
	}
}

func TestFromStatus(t *testing.T) {
	if FromStatus(nil) != nil {
		t.Error("FromStatus(nil) should be nil")
	}

	tests := []struct {
		code codes.Code
		want mdwerror.Code
	}{
		{codes.InvalidArgument, mdwerror.CodeInvalidInput},
		{codes.ResourceExhausted, mdwerror.CodeAllocation},
		{codes.Unavailable, mdwerror.CodeServiceUnavailable},
		{codes.Unknown, mdwerror.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := FromStatus(status.Error(tt.code, "boom"))
			if !mdwerror.HasCode(err, tt.want) {
				t.Errorf("FromStatus(%v) code = %s, want %s", tt.code, mdwerror.GetCode(err), tt.want)
			}
			if status.Code(errors.Unwrap(err)) != tt.code {
				t.Error("cause should be the original status error")
			}
		})
	}

	coded := mdwerror.New("x").WithCode(mdwerror.CodeParseError)
	if FromStatus(coded) != coded {
		t.Error("coded errors should be returned unchanged")
	}
}
