package acl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jsamuelsen/verse-service/internal/adapters/clients"
	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/platform/logging"
	"github.com/jsamuelsen/verse-service/internal/ports"
)

const fetchOperation = "fetch background"

var (
	_ ports.ImageSource   = (*PicsumSource)(nil)
	_ ports.HealthChecker = (*PicsumSource)(nil)
)

// PicsumConfig configures a PicsumSource.
type PicsumConfig struct {
	// Client should be built with NoRedirects so the image body is never downloaded.
	Client *clients.Client
	Width  int
	Height int
}

// PicsumSource resolves random images from picsum.photos.
//
// GET /{width}/{height}?random={seed} answers with a redirect to a concrete
// image. The redirect target is returned so every viewer shows the same picture.
type PicsumSource struct {
	client *clients.Client
	width  int
	height int
	now    func() time.Time
}

// NewPicsumSource creates the adapter. Panics if Client is nil.
func NewPicsumSource(cfg PicsumConfig) *PicsumSource {
	if cfg.Client == nil {
		panic("PicsumSource: Client is required")
	}

	return &PicsumSource{
		client: cfg.Client,
		width:  cfg.Width,
		height: cfg.Height,
		now:    time.Now,
	}
}

// Random resolves one random image for seed.
func (s *PicsumSource) Random(ctx context.Context, seed int64) (*domain.Backdrop, error) {
	logger := logging.FromContext(ctx)
	path := fmt.Sprintf("/%d/%d", s.width, s.height)
	seedStr := strconv.FormatInt(seed, 10)

	logger.Log(ctx, logging.LevelTrace, "resolving background image",
		slog.String("path", path),
		slog.String("seed", seedStr),
	)

	resp, err := s.client.Get(ctx, path, url.Values{"random": {seedStr}})
	if err != nil {
		return nil, MapHTTPError(nil, err, s.client.Name(), fetchOperation, "")
	}

	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
	}()

	var target string

	switch {
	case resp.StatusCode >= http.StatusMultipleChoices && resp.StatusCode < http.StatusBadRequest:
		loc, err := resp.Location()
		if err != nil {
			return nil, domain.NewUnavailableError(s.client.Name(), "redirect without location")
		}

		target = loc.String()
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		target = resp.Request.URL.String()
	default:
		return nil, MapHTTPError(resp, nil, s.client.Name(), fetchOperation, path)
	}

	logger.Log(ctx, logging.LevelTrace, "background image resolved", slog.String("url", target))

	return &domain.Backdrop{
		URL:       target,
		Seed:      seed,
		FetchedAt: s.now(),
	}, nil
}

// Name implements ports.HealthChecker.
func (s *PicsumSource) Name() string {
	return s.client.Name()
}

// Check reports the service unavailable while the client's breaker is open.
// It never calls the service.
func (s *PicsumSource) Check(context.Context) error {
	if s.client.CircuitState() == clients.StateOpen {
		return domain.NewUnavailableError(s.client.Name(), "circuit breaker open")
	}

	return nil
}
