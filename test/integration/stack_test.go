//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jsamuelsen/verse-service/internal/adapters/clients"
	"github.com/jsamuelsen/verse-service/internal/adapters/clients/acl"
	apphttp "github.com/jsamuelsen/verse-service/internal/adapters/http"
	"github.com/jsamuelsen/verse-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/verse-service/internal/adapters/storage"
	"github.com/jsamuelsen/verse-service/internal/app"
	"github.com/jsamuelsen/verse-service/internal/platform/config"
	"github.com/jsamuelsen/verse-service/internal/ports"
)

const imageHost = "https://images.example"

// imageServer answers like picsum: a redirect to a concrete image per seed.
type imageServer struct {
	*httptest.Server

	hits atomic.Int32
	down atomic.Bool
}

func newImageServer(t *testing.T) *imageServer {
	t.Helper()

	s := &imageServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)

		if s.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		http.Redirect(w, r, imageHost+"/id/"+r.URL.Query().Get("random")+r.URL.Path+".jpg", http.StatusFound)
	}))
	t.Cleanup(s.Close)

	return s
}

// stack is the whole service running in-process over a real store.
type stack struct {
	server   *httptest.Server
	repo     *app.Repository
	admin    *app.AdminService
	viewer   *app.Viewer
	backdrop *app.Backdrop
	source   *acl.PicsumSource
	images   *imageServer
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T, driver, dir string) storage.Store {
	t.Helper()

	var path string

	switch driver {
	case storage.DriverBolt:
		path = filepath.Join(dir, "verses.db")
	case storage.DriverSQLite:
		path = filepath.Join(dir, "verses.sqlite")
	}

	store, err := storage.Open(context.Background(), driver, path)
	require.NoError(t, err)

	return store
}

func newImageClient(t *testing.T, baseURL string) *clients.Client {
	t.Helper()

	client, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: "picsum",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   2,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 1,
		},
		NoRedirects: true,
		Logger:      discardLogger(),
	})
	require.NoError(t, err)

	return client
}

func newStack(t *testing.T, driver string) *stack {
	t.Helper()

	gin.SetMode(gin.TestMode)

	store := openStore(t, driver, t.TempDir())
	t.Cleanup(func() { _ = store.Close() })

	logger := discardLogger()
	repo := app.NewRepository(store, nil)
	creds := app.NewCredentials(store, app.WithBcryptCost(bcrypt.MinCost))
	admin := app.NewAdminService(repo, creds, app.NewSessions(time.Hour), app.NewExecutor(logger), app.AdminConfig{})

	images := newImageServer(t)
	source := acl.NewPicsumSource(acl.PicsumConfig{
		Client: newImageClient(t, images.URL),
		Width:  1920,
		Height: 1080,
	})

	backdrop := app.NewBackdrop(source, time.Second)
	t.Cleanup(backdrop.Close)

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(store))
	require.NoError(t, registry.Register(ports.Optional(source)))

	viewer := app.NewViewer(repo, app.WithBackdrop(backdrop))
	opts := handlers.AdminOptions{MaxImportSize: 1 << 20}

	engine := gin.New()
	apphttp.SetupRouter(engine, apphttp.RouterConfig{
		Logger:        logger,
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "abc123", "now")),
		ViewerHandler: handlers.NewViewerHandler(viewer, images.URL+"/1920/1080"),
		AdminHandler:  handlers.NewAdminHandler(admin, opts),
		AdminPages:    handlers.NewAdminPages(admin, opts),
		Timeout:       apphttp.DefaultRequestTimeout,
	})

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return &stack{
		server:   server,
		repo:     repo,
		admin:    admin,
		viewer:   viewer,
		backdrop: backdrop,
		source:   source,
		images:   images,
	}
}
