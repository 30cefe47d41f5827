package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/messeorder/internal/catalog"
)

func writeCatalog(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		catalog.CustomersResource: `[{"name":"Abel GmbH","strasse":"Hauptstr. 1","plz":"10115","ort":"Berlin","email":"info@abel.de","telefon":"030 123"}]`,
		catalog.ArticlesResource:  `[{"artikelnummer":"A1","name":"Widget","einheit":"Stk","preis":9.99}]`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func testConfig(t *testing.T) Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.HTTPAddr = fmt.Sprintf("127.0.0.1:%d", findFreePort(t))
	cfg.GRPCAddr = "127.0.0.1:0"
	cfg.MetricsAddr = fmt.Sprintf("127.0.0.1:%d", findFreePort(t))
	cfg.CatalogDir = writeCatalog(t)
	cfg.ArchiveDriver = ArchiveDriverMemory
	return cfg
}

func waitFor(t *testing.T, url string, wantStatus int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == wantStatus {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("%s did not answer %d in time", url, wantStatus)
}

func TestRun_MemoryGracefulShutdown(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	waitFor(t, "http://"+cfg.MetricsAddr+"/readyz", http.StatusOK)

	resp, err := http.Post("http://"+cfg.HTTPAddr+"/api/v1/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for new session, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_CatalogMissingIsNotReady(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogDir = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	waitFor(t, "http://"+cfg.MetricsAddr+"/livez", http.StatusOK)
	waitFor(t, "http://"+cfg.MetricsAddr+"/readyz", http.StatusServiceUnavailable)

	cancel()
	<-done
}

func TestRun_InvalidArchiveDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArchiveDriver = "invalid-driver"

	err := Run(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "unsupported archive driver") {
		t.Fatalf("expected unsupported archive driver error, got %v", err)
	}
}

func TestRun_HTTPAddrInUse(t *testing.T) {
	cfg := testConfig(t)

	blocker := &http.Server{Addr: cfg.HTTPAddr, ReadHeaderTimeout: time.Second}
	go func() { _ = blocker.ListenAndServe() }()
	defer blocker.Close()
	waitFor(t, "http://"+cfg.HTTPAddr+"/", http.StatusNotFound)

	err := Run(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "listen http api") {
		t.Fatalf("expected listen error, got %v", err)
	}
}

func TestInitRuntimeDependencies_PostgresSuccess(t *testing.T) {
	dsn := postgresTestDSNCandidate()
	if dsn == "" {
		t.Skip("postgres dsn is not available")
	}

	cfg := DefaultConfig()
	cfg.ArchiveDriver = ArchiveDriverPostgres
	cfg.PostgresDSN = dsn
	cfg.PostgresAutoMigrate = true

	deps, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "postgres-init"))
	if err != nil {
		t.Skipf("postgres is not available for app integration test: %v", err)
	}
	defer func() { _ = deps.close() }()

	if deps.archive == nil || deps.outbox == nil {
		t.Fatalf("postgres dependencies must be initialized: %+v", deps)
	}
	if err := deps.ping(context.Background()); err != nil {
		t.Fatalf("expected reachable postgres, got %v", err)
	}
}

func postgresTestDSNCandidate() string {
	return strings.TrimSpace(os.Getenv("MESSEORDER_POSTGRES_TEST_DSN"))
}
