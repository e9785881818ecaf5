package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/platform/logging"
	"github.com/jsamuelsen/verse-service/internal/ports"
)

// Backdrop keeps the viewer's background image fresh.
//
// Refresh starts a fetch in the background and returns immediately. Requests
// arriving while a fetch runs are folded into one follow-up fetch that starts
// once it finishes, so a fetch is never abandoned for a newer one.
// Failures are logged and the last good image stays in place.
type Backdrop struct {
	source  ports.ImageSource
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	current *domain.Backdrop
	running bool
	pending context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewBackdrop creates a backdrop that fetches from source, giving each fetch
// at most timeout.
func NewBackdrop(source ports.ImageSource, timeout time.Duration) *Backdrop {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Backdrop{source: source, timeout: timeout, now: time.Now}
}

// Refresh requests a new image without waiting for it.
// The fetch keeps ctx's values (logger, IDs) but not its cancellation.
func (b *Backdrop) Refresh(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	base := context.WithoutCancel(ctx)

	if b.running {
		b.pending = base

		return
	}

	b.running = true
	b.wg.Add(1)

	go b.run(base)
}

// run fetches until no request is pending.
func (b *Backdrop) run(base context.Context) {
	defer b.wg.Done()

	b.mu.Lock()
	for base != nil {
		fetchCtx, cancel := context.WithTimeout(base, b.timeout)
		b.cancel = cancel
		seed := b.now().UnixMilli()
		b.mu.Unlock()

		b.fetch(fetchCtx, seed)
		cancel()

		b.mu.Lock()
		base, b.pending = b.pending, nil
	}

	b.running = false
	b.cancel = nil
	b.mu.Unlock()
}

func (b *Backdrop) fetch(ctx context.Context, seed int64) {
	logger := logging.FromContext(ctx)

	img, err := b.source.Random(ctx, seed)
	if err != nil {
		backdropFailures.Inc()
		logger.WarnContext(ctx, "background image fetch failed, keeping previous",
			slog.Any("error", err),
		)

		return
	}

	b.mu.Lock()
	b.current = img
	b.mu.Unlock()

	logger.DebugContext(ctx, "background image updated", slog.String("url", img.URL))
}

// Current returns the last successfully fetched image.
func (b *Backdrop) Current() (domain.Backdrop, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return domain.Backdrop{}, false
	}

	return *b.current, true
}

// Wait blocks until every started fetch has finished.
func (b *Backdrop) Wait() {
	b.wg.Wait()
}

// Close drops any pending request, cancels the fetch in flight and waits
// for it to return.
func (b *Backdrop) Close() {
	b.mu.Lock()
	b.pending = nil
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()

	b.wg.Wait()
}
