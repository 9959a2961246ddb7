package integration

import (
	"context"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"google.golang.org/grpc"

	coregrpc "github.com/msto63/lox/pkg/core/grpc"
)

// Test configuration from environment or defaults. The addresses match
// the defaults of `lox serve`.
type TestConfig struct {
	GRPCAddr string
	HTTPAddr string
}

func getTestConfig() TestConfig {
	return TestConfig{
		GRPCAddr: getEnv("TEST_LOX_GRPC_ADDR", "127.0.0.1:9310"),
		HTTPAddr: getEnv("TEST_LOX_HTTP_ADDR", "127.0.0.1:8310"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// skipIfServiceUnavailable skips the test if the service is not reachable
func skipIfServiceUnavailable(t *testing.T, addr string, serviceName string) {
	t.Helper()
	if !isServiceAvailable(addr) {
		t.Skipf("Skipping: %s not available at %s", serviceName, addr)
	}
}

// isServiceAvailable checks if a TCP connection can be established
func isServiceAvailable(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// dialGRPC creates a gRPC connection to the frontend service
func dialGRPC(t *testing.T, addr string) *grpc.ClientConn {
	t.Helper()

	conn, err := coregrpc.DialSimple(addr)
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", addr, err)
	}

	t.Cleanup(func() {
		conn.Close()
	})

	return conn
}

// testContext returns a context with timeout for tests
func testContext(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), timeout)
}

// requireNoError fails the test if err is not nil
func requireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// requireEqual fails the test if expected != actual
func requireEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	if expected != actual {
		t.Fatalf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// logTestStart logs the start of a test
func logTestStart(t *testing.T, testName string) {
	t.Helper()
	t.Logf("=== lox serve: %s ===", testName)
}

func httpURL(addr, path string) string {
	return fmt.Sprintf("http://%s%s", addr, path)
}
