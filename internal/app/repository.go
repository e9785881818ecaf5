package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jsamuelsen/verse-service/internal/codec"
	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/platform/logging"
	"github.com/jsamuelsen/verse-service/internal/ports"
)

// Repository owns the in-memory copy of the collection and its persisted form.
//
// The collection is read from the store once and cached. Every mutation runs
// against a copy, is flushed to the store, and only then replaces the cache.
// A failed flush leaves both the cache and the store untouched.
type Repository struct {
	store    ports.KeyValueStore
	codec    *codec.JSONCodec
	defaults func() []domain.Quotation

	mu     sync.RWMutex
	loaded bool
	items  []domain.Quotation
}

// NewRepository creates a repository over store. defaults supplies the
// collection used while nothing has been stored; nil means domain.DefaultQuotations.
func NewRepository(store ports.KeyValueStore, defaults func() []domain.Quotation) *Repository {
	if defaults == nil {
		defaults = domain.DefaultQuotations
	}

	return &Repository{
		store:    store,
		codec:    codec.NewJSONCodec(),
		defaults: defaults,
	}
}

// All returns a copy of the collection in order.
func (r *Repository) All(ctx context.Context) ([]domain.Quotation, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneItems(r.items), nil
}

// Count returns the collection size.
func (r *Repository) Count(ctx context.Context) (int, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

// Get returns the quotation with id and its 1-based position.
func (r *Repository) Get(ctx context.Context, id string) (domain.Indexed, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return domain.Indexed{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := indexOf(r.items, id)
	if idx < 0 {
		return domain.Indexed{}, domain.NewNotFoundError("quotation", id)
	}

	return domain.Indexed{Quotation: r.items[idx], Position: idx + 1}, nil
}

// Mutate applies fn to a copy of the collection and persists the result.
// fn may return a domain error to abort without touching anything.
func (r *Repository) Mutate(ctx context.Context, fn func(items []domain.Quotation) ([]domain.Quotation, error)) error {
	if err := r.ensureLoaded(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fn(cloneItems(r.items))
	if err != nil {
		return err
	}

	if err := r.flushLocked(ctx, next); err != nil {
		return err
	}

	r.items = next

	return nil
}

// Reload drops the cache so the next read goes back to the store.
// Use it after another process changed the store directly.
func (r *Repository) Reload(ctx context.Context) error {
	r.mu.Lock()
	r.loaded = false
	r.items = nil
	r.mu.Unlock()

	return r.ensureLoaded(ctx)
}

// Flush writes the cached collection to the store.
func (r *Repository) Flush(ctx context.Context) error {
	if err := r.ensureLoaded(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.flushLocked(ctx, r.items)
}

func (r *Repository) flushLocked(ctx context.Context, items []domain.Quotation) error {
	var buf bytes.Buffer
	if err := r.codec.Export(items, &buf); err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}

	if err := r.store.Set(ctx, ports.KeyQuotations, buf.Bytes()); err != nil {
		return fmt.Errorf("persisting collection: %w", err)
	}

	logging.FromContext(ctx).DebugContext(ctx, "collection flushed", slog.Int("count", len(items)))

	return nil
}

func (r *Repository) ensureLoaded(ctx context.Context) error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()

	if loaded {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return nil
	}

	items, reassigned, err := r.read(ctx)
	if err != nil {
		return err
	}

	// Generated IDs are written back so they survive a reload.
	if reassigned {
		if err := r.flushLocked(ctx, items); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "persisting assigned ids failed", slog.Any("error", err))
		}
	}

	r.items = items
	r.loaded = true

	return nil
}

// read loads the stored collection. reassigned reports whether any stored
// entry was given a new ID.
func (r *Repository) read(ctx context.Context) (items []domain.Quotation, reassigned bool, err error) {
	logger := logging.FromContext(ctx)

	raw, err := r.store.Get(ctx, ports.KeyQuotations)
	if domain.IsNotFound(err) {
		logger.DebugContext(ctx, "no stored collection, using bundled defaults")

		return r.defaults(), false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("reading collection: %w", err)
	}

	entries, err := r.codec.Parse(bytes.NewReader(raw))
	if err != nil {
		logger.ErrorContext(ctx, "stored collection is unreadable", slog.Any("error", err))

		return nil, false, domain.NewUnavailableError("verse-store", "stored collection is unreadable")
	}

	items = codec.Quotations(entries)

	return items, assignIDs(items, nil), nil
}

// assignIDs gives every quotation a unique ID. IDs that are blank, or
// already present in taken or earlier in items, are replaced. It reports
// whether any ID changed.
func assignIDs(items []domain.Quotation, taken map[string]bool) bool {
	seen := make(map[string]bool, len(taken)+len(items))
	for id := range taken {
		seen[id] = true
	}

	changed := false

	for i := range items {
		if items[i].ID == "" || seen[items[i].ID] {
			items[i].ID = uuid.NewString()
			changed = true
		}

		seen[items[i].ID] = true
	}

	return changed
}

func indexOf(items []domain.Quotation, id string) int {
	for i, q := range items {
		if q.ID == id {
			return i
		}
	}

	return -1
}

func cloneItems(items []domain.Quotation) []domain.Quotation {
	out := make([]domain.Quotation, len(items))
	copy(out, items)

	return out
}
