package infra

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewHTTPServerAppliesConfig(t *testing.T) {
	cfg := &Config{
		Port:             "9090",
		HTTPReadTimeout:  3 * time.Second,
		HTTPWriteTimeout: 4 * time.Second,
		HTTPIdleTimeout:  5 * time.Second,
	}
	srv := NewHTTPServer(cfg, http.NotFoundHandler(), zerolog.Nop())

	if srv.Addr() != ":9090" {
		t.Fatalf("Addr = %q", srv.Addr())
	}
	if srv.server.ReadTimeout != 3*time.Second || srv.server.WriteTimeout != 4*time.Second || srv.server.IdleTimeout != 5*time.Second {
		t.Fatalf("timeouts not applied: %+v", srv.server)
	}
}

func TestHTTPServerErrorLogIsStructured(t *testing.T) {
	var buf bytes.Buffer
	srv := NewHTTPServer(&Config{Port: "0"}, http.NotFoundHandler(), zerolog.New(&buf))

	srv.server.ErrorLog.Print("http: TLS handshake error")
	if !strings.Contains(buf.String(), `"component":"http"`) || !strings.Contains(buf.String(), "TLS handshake error") {
		t.Fatalf("server error log not routed through zerolog: %s", buf.String())
	}
}

func TestHTTPServerStartAfterShutdownIsClean(t *testing.T) {
	srv := NewHTTPServer(&Config{Port: "0"}, http.NotFoundHandler(), zerolog.Nop())
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start after Shutdown returned %v", err)
	}
}
