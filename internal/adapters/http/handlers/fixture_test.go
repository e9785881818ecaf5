package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jsamuelsen/verse-service/internal/adapters/http/web"
	"github.com/jsamuelsen/verse-service/internal/adapters/storage/memory"
	"github.com/jsamuelsen/verse-service/internal/app"
	"github.com/jsamuelsen/verse-service/internal/domain"
)

const testPassword = app.DefaultAdminPassword

type fixture struct {
	engine *gin.Engine
	admin  *app.AdminService
	repo   *app.Repository
}

func verse(id, zh, en string) domain.Quotation {
	return domain.Quotation{
		ID:                 id,
		PrimaryText:        zh,
		PrimaryReference:   zh + " 1:1",
		SecondaryText:      en,
		SecondaryReference: en + " 1:1",
	}
}

// newFixture serves every viewer and admin route over a memory store holding items.
// The viewer always draws the first candidate.
func newFixture(t *testing.T, items ...domain.Quotation) *fixture {
	t.Helper()

	store := memory.New()
	repo := app.NewRepository(store, nil)

	require.NoError(t, repo.Mutate(context.Background(), func([]domain.Quotation) ([]domain.Quotation, error) {
		return append([]domain.Quotation{}, items...), nil
	}))

	creds := app.NewCredentials(store, app.WithBcryptCost(bcrypt.MinCost))
	executor := app.NewExecutor(slog.New(slog.NewTextHandler(io.Discard, nil)))
	admin := app.NewAdminService(repo, creds, app.NewSessions(0), executor, app.AdminConfig{})
	viewer := app.NewViewer(repo, app.WithRandom(func(int) int { return 0 }))

	engine := gin.New()
	engine.SetHTMLTemplate(web.MustTemplates())

	api := engine.Group("/api/v1")
	NewViewerHandler(viewer, "https://picsum.photos/1920/1080").RegisterViewerRoutes(engine, api)
	NewAdminHandler(admin, AdminOptions{MaxImportSize: 1 << 20}).RegisterAdminRoutes(api)
	NewAdminPages(admin, AdminOptions{MaxImportSize: 1 << 20}).RegisterPageRoutes(engine)

	return &fixture{engine: engine, admin: admin, repo: repo}
}

func (f *fixture) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	return w
}

func (f *fixture) doJSON(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return f.do(req, cookies...)
}

// login opens an admin session and returns its cookie.
func (f *fixture) login(t *testing.T) *http.Cookie {
	t.Helper()

	w := f.doJSON(http.MethodPost, "/api/v1/admin/login", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusNoContent, w.Code)

	return findCookie(t, w, "verse_admin_session")
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	resp := w.Result()
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}

	require.FailNow(t, "cookie not set", name)

	return nil
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))

	return v
}
