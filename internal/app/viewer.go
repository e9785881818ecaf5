package app

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/platform/logging"
	"github.com/jsamuelsen/verse-service/internal/platform/telemetry"
)

// PickNext chooses a quotation uniformly at random, never returning the one
// whose ID is previousID while another candidate exists.
// intn must return a value in [0, n). The second result is false for an empty collection.
func PickNext(items []domain.Quotation, previousID string, intn func(n int) int) (domain.Quotation, bool) {
	switch len(items) {
	case 0:
		return domain.Quotation{}, false
	case 1:
		return items[0], true
	}

	prev := -1
	if previousID != "" {
		prev = indexOf(items, previousID)
	}

	if prev < 0 {
		return items[intn(len(items))], true
	}

	// Draw from the n-1 other slots and step over the previous one.
	k := intn(len(items) - 1)
	if k >= prev {
		k++
	}

	return items[k], true
}

// Viewer serves the public page: random picks and share text.
type Viewer struct {
	repo     *Repository
	backdrop *Backdrop
	intn     func(n int) int
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithBackdrop makes every successful pick refresh the background image.
func WithBackdrop(b *Backdrop) ViewerOption {
	return func(v *Viewer) { v.backdrop = b }
}

// WithRandom replaces the random source, mainly for tests.
func WithRandom(intn func(n int) int) ViewerOption {
	return func(v *Viewer) { v.intn = intn }
}

// NewViewer creates a viewer over repo.
func NewViewer(repo *Repository, opts ...ViewerOption) *Viewer {
	v := &Viewer{repo: repo, intn: rand.IntN}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Pick returns a random quotation other than previousID.
// It returns nil, nil when the collection is empty.
func (v *Viewer) Pick(ctx context.Context, previousID string) (_ *domain.Quotation, err error) {
	ctx, span := telemetry.Start(ctx, "verse.pick", attribute.String("verse.previous_id", previousID))
	defer func() { telemetry.End(span, err) }()

	items, err := v.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	q, ok := PickNext(items, previousID, v.intn)
	if !ok {
		logging.FromContext(ctx).DebugContext(ctx, "collection empty, nothing to pick")

		return nil, nil
	}

	picksTotal.Inc()
	logging.FromContext(ctx).DebugContext(ctx, "quotation picked", slog.String("id", q.ID))

	if v.backdrop != nil {
		v.backdrop.Refresh(ctx)
	}

	return &q, nil
}

// ShareText returns the clipboard text for the quotation with id.
func (v *Viewer) ShareText(ctx context.Context, id string) (string, error) {
	indexed, err := v.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	return indexed.ShareText(), nil
}

// Backdrop returns the most recent background image, if any has loaded yet.
func (v *Viewer) Backdrop() (domain.Backdrop, bool) {
	if v.backdrop == nil {
		return domain.Backdrop{}, false
	}

	return v.backdrop.Current()
}
