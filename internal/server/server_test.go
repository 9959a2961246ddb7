package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	mdwlog "github.com/msto63/lox/foundation/core/log"
	"github.com/msto63/lox/foundation/lox"
	"github.com/msto63/lox/foundation/lox/scanner"
	"github.com/msto63/lox/internal/store"
	coregrpc "github.com/msto63/lox/pkg/core/grpc"
	"github.com/msto63/lox/pkg/core/health"
)

type testServer struct {
	conn    *grpc.ClientConn
	httpURL string
	store   *store.MemoryStore
}

func startServer(t *testing.T, opts lox.Options) *testServer {
	t.Helper()

	opts.Logger = mdwlog.Discard()
	engine, err := lox.New(opts)
	if err != nil {
		t.Fatalf("lox.New() error = %v", err)
	}
	st := store.NewMemoryStore()
	srv := New(DefaultConfig(), NewFrontend(engine, st, mdwlog.Discard()))

	grpcLis := bufconn.Listen(1 << 20)
	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, grpcLis, httpLis)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	cfg := coregrpc.DefaultClientConfig("passthrough:///bufnet")
	cfg.Logger = mdwlog.Discard()
	cfg.Dialer = func(ctx context.Context, _ string) (net.Conn, error) {
		return grpcLis.DialContext(ctx)
	}
	conn, err := coregrpc.Dial(cfg)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &testServer{conn: conn, httpURL: "http://" + httpLis.Addr().String(), store: st}
}

func TestFrontend_Process(t *testing.T) {
	ts := startServer(t, lox.Options{})
	client := NewClient(ts.conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tests := []struct {
		name       string
		source     string
		tree       string
		lexError   bool
		parseError bool
		exit       int
		diags      int
	}{
		{"ok", "-123 * (45.67)", "(* (- 123) (group 45.67))", false, false, 0, 0},
		{"parse error", "(1 + 2", "", false, true, 65, 1},
		{"lex error", "1 + 2 $", "(+ 1 2)", true, false, 65, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := client.Process(ctx, tt.name, tt.source)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if p.Tree != tt.tree || p.LexError != tt.lexError || p.ParseError != tt.parseError {
				t.Errorf("Process() = tree %q lex %v parse %v", p.Tree, p.LexError, p.ParseError)
			}
			if p.ExitCode != tt.exit || len(p.Diagnostics) != tt.diags {
				t.Errorf("exit %d diagnostics %v", p.ExitCode, p.Diagnostics)
			}
			if len(p.Tokens) == 0 || p.Tokens[len(p.Tokens)-1].Kind != scanner.EOF {
				t.Errorf("tokens = %v, want a list ending in EOF", p.Tokens)
			}
		})
	}

	p, _ := client.Process(ctx, "", "-123 * (45.67)")
	if len(p.Tokens) != 7 || p.AST["type"] != "binary" || p.AST["operator"] != "*" {
		t.Errorf("tokens %d ast %v", len(p.Tokens), p.AST)
	}

	stats, err := ts.store.Stats(ctx)
	if err != nil || stats.ByOrigin[store.OriginGRPC] != 4 || stats.Failed != 2 {
		t.Errorf("Stats() = %+v, %v", stats, err)
	}
	runs, _ := ts.store.List(ctx, store.Filter{Limit: 1})
	if len(runs) != 1 || len(runs[0].SessionID) != 36 {
		t.Errorf("runs should carry the request id, got %+v", runs)
	}
}

func TestFrontend_ProcessStatus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("missing source", func(t *testing.T) {
		ts := startServer(t, lox.Options{})
		req, _ := structpb.NewStruct(map[string]interface{}{"name": "x"})
		err := ts.conn.Invoke(ctx, ProcessMethod, req, new(structpb.Struct))
		if status.Code(err) != codes.InvalidArgument {
			t.Errorf("status = %v, want InvalidArgument", status.Code(err))
		}
	})

	t.Run("wrong source type", func(t *testing.T) {
		ts := startServer(t, lox.Options{})
		req, _ := structpb.NewStruct(map[string]interface{}{"source": 5})
		err := ts.conn.Invoke(ctx, ProcessMethod, req, new(structpb.Struct))
		if status.Code(err) != codes.InvalidArgument {
			t.Errorf("status = %v, want InvalidArgument", status.Code(err))
		}
	})

	t.Run("allocation failure", func(t *testing.T) {
		ts := startServer(t, lox.Options{MaxTokens: 2})
		_, err := NewClient(ts.conn).Process(ctx, "", "1 + 2")
		if status.Code(err) != codes.ResourceExhausted {
			t.Errorf("status = %v, want ResourceExhausted", status.Code(err))
		}
	})

	t.Run("health", func(t *testing.T) {
		ts := startServer(t, lox.Options{})
		resp, err := healthpb.NewHealthClient(ts.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if resp.Status != healthpb.HealthCheckResponse_SERVING {
			t.Errorf("health = %v", resp.Status)
		}
	})
}

func TestHealthz(t *testing.T) {
	ts := startServer(t, lox.Options{})
	resp, err := http.Get(ts.httpURL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || report.Status != health.StatusHealthy {
		t.Errorf("healthz = %d %+v", resp.StatusCode, report)
	}
	if len(report.Checks) != 2 || report.Checks[0].Name != "engine" || report.Checks[1].Name != "store" {
		t.Errorf("checks = %+v", report.Checks)
	}
}

func TestHealthRegistry_EngineProbeFails(t *testing.T) {
	// a token limit below the probe size makes every run fail
	engine, err := lox.New(lox.Options{Logger: mdwlog.Discard(), MaxTokens: 1})
	if err != nil {
		t.Fatal(err)
	}
	report := NewHealthRegistry(NewFrontend(engine, nil, mdwlog.Discard())).Check(context.Background())
	if report.Healthy() || len(report.Checks) != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestWebSocket(t *testing.T) {
	ts := startServer(t, lox.Options{})
	wsURL := "ws" + strings.TrimPrefix(ts.httpURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	exchange := func(msg string) (string, json.RawMessage) {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatal(err)
		}
		var resp struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatal(err)
		}
		return resp.Type, resp.Payload
	}

	if typ, _ := exchange(`{"type":"ping"}`); typ != "pong" {
		t.Errorf("ping reply = %q", typ)
	}

	typ, raw := exchange(`{"type":"process","payload":{"source":"!true == false"}}`)
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil || typ != "result" {
		t.Fatalf("process reply %q %s: %v", typ, raw, err)
	}
	if p.Tree != "(== (! true) false)" || p.ExitCode != 0 {
		t.Errorf("payload = %+v", p)
	}

	typ, raw = exchange(`{"type":"process","payload":{"source":")"}}`)
	_ = json.Unmarshal(raw, &p)
	if typ != "result" || !p.ParseError || len(p.Diagnostics) != 1 || p.Diagnostics[0].Message != "Expect expression." {
		t.Errorf("parse error reply %q %+v", typ, p)
	}

	tests := []struct {
		msg  string
		code string
	}{
		{`{"type":"process","payload":"oops"}`, "invalid_payload"},
		{`{"type":"eval"}`, "unknown_type"},
	}
	for _, tt := range tests {
		typ, raw := exchange(tt.msg)
		var e WSErrorPayload
		_ = json.Unmarshal(raw, &e)
		if typ != "error" || e.Code != tt.code {
			t.Errorf("%s: reply %q %+v, want code %s", tt.msg, typ, e, tt.code)
		}
	}

	stats, err := ts.store.Stats(context.Background())
	if err != nil || stats.ByOrigin[store.OriginWebSocket] != 2 {
		t.Errorf("Stats() = %+v, %v, want 2 websocket runs", stats, err)
	}
}
