package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/verse-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/verse-service/internal/adapters/storage/memory"
	"github.com/jsamuelsen/verse-service/internal/app"
	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/mocks"
)

func TestViewerHandler_Page(t *testing.T) {
	first := verse("q-1", "起初", "In the beginning")
	second := verse("q-2", "要有光", "Let there be light")

	tests := []struct {
		name    string
		items   []domain.Quotation
		path    string
		want    []string
		notWant []string
	}{
		{
			name:  "first visit",
			items: []domain.Quotation{first, second},
			path:  "/",
			want:  []string{first.PrimaryText, first.SecondaryText, domain.ReferencePrefix + first.PrimaryReference, `href="/?exclude=q-1"`},
		},
		{
			name:    "next skips the verse on screen",
			items:   []domain.Quotation{first, second},
			path:    "/?exclude=q-1",
			want:    []string{second.PrimaryText, `href="/?exclude=q-2"`},
			notWant: []string{first.PrimaryText},
		},
		{
			name:  "single verse repeats",
			items: []domain.Quotation{first},
			path:  "/?exclude=q-1",
			want:  []string{first.PrimaryText},
		},
		{
			name:    "empty collection shows placeholder",
			items:   nil,
			path:    "/",
			want:    []string{domain.PlaceholderText, `href="/"`},
			notWant: []string{"分享"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.items...)

			w := f.do(httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

			body := w.Body.String()
			for _, s := range tt.want {
				assert.Contains(t, body, s)
			}

			for _, s := range tt.notWant {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestViewerHandler_Random(t *testing.T) {
	t.Run("returns a verse", func(t *testing.T) {
		f := newFixture(t, verse("q-1", "起初", "In the beginning"), verse("q-2", "要有光", "Let there be light"))

		w := f.doJSON(http.MethodGet, "/api/v1/verses/random?exclude=q-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[dto.RandomVerseResponse](t, w)
		require.NotNil(t, resp.Verse)
		assert.Equal(t, "q-2", resp.Verse.ID)
		assert.Equal(t, "要有光", resp.Verse.Zh)
		assert.Empty(t, resp.Placeholder)
		assert.True(t, strings.HasPrefix(resp.Background, "https://picsum.photos/1920/1080?random="), resp.Background)
	})

	t.Run("empty collection", func(t *testing.T) {
		f := newFixture(t)

		w := f.doJSON(http.MethodGet, "/api/v1/verses/random", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[dto.RandomVerseResponse](t, w)
		assert.Nil(t, resp.Verse)
		assert.Equal(t, domain.PlaceholderText, resp.Placeholder)
	})
}

func TestViewerHandler_Share(t *testing.T) {
	q := verse("q-1", "起初", "In the beginning")
	f := newFixture(t, q)

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"known verse", "q-1", http.StatusOK},
		{"unknown verse", "missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.doJSON(http.MethodGet, "/api/v1/verses/"+tt.id+"/share", nil)
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, dto.ErrorCodeNotFound, decode[dto.ErrorResponse](t, w).Error.Code)
				return
			}

			resp := decode[dto.ShareResponse](t, w)
			assert.Equal(t, domain.ShareTitle, resp.Title)
			assert.Equal(t, "起初\n— 起初 1:1\n\nIn the beginning\n— In the beginning 1:1", resp.Text)
		})
	}
}

func TestViewerHandler_Background(t *testing.T) {
	image := &domain.Backdrop{URL: "https://fastly.picsum.photos/id/10/1920/1080.jpg", Seed: 42}

	source := mocks.NewMockImageSource(t)
	source.EXPECT().Random(mock.Anything, mock.Anything).Return(image, nil)

	backdrop := app.NewBackdrop(source, time.Second)
	defer backdrop.Close()

	repo := app.NewRepository(memory.New(), nil)
	viewer := app.NewViewer(repo, app.WithBackdrop(backdrop))

	engine := gin.New()
	NewViewerHandler(viewer, "").RegisterViewerRoutes(engine, engine.Group("/api/v1"))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		return w
	}

	w := get("/api/v1/background")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusOK, get("/api/v1/verses/random").Code)
	backdrop.Wait()

	w = get("/api/v1/background")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.BackgroundResponse](t, w)
	assert.Equal(t, image.URL, resp.URL)
	assert.Equal(t, image.Seed, resp.Seed)

	random := decode[dto.RandomVerseResponse](t, get("/api/v1/verses/random"))
	backdrop.Wait()
	assert.Equal(t, image.URL, random.Background)
}
