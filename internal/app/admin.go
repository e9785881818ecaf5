package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/verse-service/internal/codec"
	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/platform/logging"
	"github.com/jsamuelsen/verse-service/internal/platform/telemetry"
)

// AdminConfig holds the admin service settings.
type AdminConfig struct {
	// StrictImport rejects a whole import when any element is not a complete
	// quotation object. Off by default, matching the lenient file importer.
	StrictImport bool
}

// AdminService implements the password-gated management operations.
type AdminService struct {
	repo     *Repository
	creds    *Credentials
	sessions *Sessions
	executor *Executor
	cfg      AdminConfig
	now      func() time.Time

	importMu sync.Mutex
}

// NewAdminService wires the admin operations together.
func NewAdminService(repo *Repository, creds *Credentials, sessions *Sessions, executor *Executor, cfg AdminConfig) *AdminService {
	return &AdminService{
		repo:     repo,
		creds:    creds,
		sessions: sessions,
		executor: executor,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Login verifies password and opens a session.
func (s *AdminService) Login(ctx context.Context, password string) (string, error) {
	logger := logging.FromContext(ctx)

	if err := s.creds.Verify(ctx, password); err != nil {
		if domain.IsUnauthorized(err) {
			loginAttempts.WithLabelValues("rejected").Inc()
			logger.WarnContext(ctx, "admin login rejected")
		}

		return "", err
	}

	loginAttempts.WithLabelValues("accepted").Inc()
	logger.InfoContext(ctx, "admin logged in")

	return s.sessions.Create(), nil
}

// Logout ends the session identified by token.
func (s *AdminService) Logout(ctx context.Context, token string) {
	s.sessions.Revoke(token)
	logging.FromContext(ctx).InfoContext(ctx, "admin logged out")
}

// Authorized reports whether token belongs to a live session.
func (s *AdminService) Authorized(token string) bool {
	return s.sessions.Validate(token)
}

// Stats is the dashboard summary.
type Stats struct {
	Total int
	Date  string
}

// Stats returns the collection size and today's date.
func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{Total: n, Date: domain.FormatDateZH(s.now())}, nil
}

// List returns the quotations matching term with their positions.
func (s *AdminService) List(ctx context.Context, term string) ([]domain.Indexed, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	return domain.Filter(items, term), nil
}

// Get returns one quotation for editing.
func (s *AdminService) Get(ctx context.Context, id string) (domain.Indexed, error) {
	return s.repo.Get(ctx, id)
}

// Create trims and validates q, then appends it.
func (s *AdminService) Create(ctx context.Context, q domain.Quotation) (domain.Quotation, error) {
	q = q.Trimmed()
	if err := q.Validate(); err != nil {
		return domain.Quotation{}, err
	}

	q.ID = uuid.NewString()

	err := s.repo.Mutate(ctx, func(items []domain.Quotation) ([]domain.Quotation, error) {
		return append(items, q), nil
	})
	if err != nil {
		return domain.Quotation{}, err
	}

	mutationsTotal.WithLabelValues("create").Inc()
	logging.FromContext(ctx).InfoContext(ctx, "quotation added", slog.String("id", q.ID))

	return q, nil
}

// Update trims and validates q, then replaces the quotation with id in place.
func (s *AdminService) Update(ctx context.Context, id string, q domain.Quotation) (domain.Quotation, error) {
	q = q.Trimmed()
	if err := q.Validate(); err != nil {
		return domain.Quotation{}, err
	}

	q.ID = id

	err := s.repo.Mutate(ctx, func(items []domain.Quotation) ([]domain.Quotation, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, domain.NewNotFoundError("quotation", id)
		}

		items[idx] = q

		return items, nil
	})
	if err != nil {
		return domain.Quotation{}, err
	}

	mutationsTotal.WithLabelValues("update").Inc()
	logging.FromContext(ctx).InfoContext(ctx, "quotation updated", slog.String("id", id))

	return q, nil
}

// Save creates when id is empty and updates otherwise.
// The boolean reports whether a new quotation was created.
func (s *AdminService) Save(ctx context.Context, id string, q domain.Quotation) (domain.Quotation, bool, error) {
	if id == "" {
		created, err := s.Create(ctx, q)

		return created, true, err
	}

	updated, err := s.Update(ctx, id, q)

	return updated, false, err
}

// Delete removes the quotation with id. Later quotations shift up.
func (s *AdminService) Delete(ctx context.Context, id string) error {
	err := s.repo.Mutate(ctx, func(items []domain.Quotation) ([]domain.Quotation, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, domain.NewNotFoundError("quotation", id)
		}

		return append(items[:idx], items[idx+1:]...), nil
	})
	if err != nil {
		return err
	}

	mutationsTotal.WithLabelValues("delete").Inc()
	logging.FromContext(ctx).InfoContext(ctx, "quotation deleted", slog.String("id", id))

	return nil
}

// ClearAll stores an empty collection. The bundled defaults do not come back.
func (s *AdminService) ClearAll(ctx context.Context) error {
	err := s.repo.Mutate(ctx, func([]domain.Quotation) ([]domain.Quotation, error) {
		return []domain.Quotation{}, nil
	})
	if err != nil {
		return err
	}

	mutationsTotal.WithLabelValues("clear").Inc()
	logging.FromContext(ctx).WarnContext(ctx, "collection cleared")

	return nil
}

// ChangePassword replaces the admin credential. Existing sessions stay valid.
func (s *AdminService) ChangePassword(ctx context.Context, password string) error {
	if err := s.creds.Change(ctx, password); err != nil {
		return err
	}

	logging.FromContext(ctx).InfoContext(ctx, "admin password changed")

	return nil
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
	Count       int
}

// Export renders the whole collection in format ("json" or "yaml").
func (s *AdminService) Export(ctx context.Context, format string) (_ *ExportFile, err error) {
	ctx, span := telemetry.Start(ctx, "verse.export", attribute.String("verse.format", format))
	defer func() { telemetry.End(span, err) }()

	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, domain.NewValidationError("format", err.Error())
	}

	items, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := c.Export(items, &buf); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "collection exported",
		slog.Int("count", len(items)),
		slog.String("format", c.Format()),
	)

	return &ExportFile{
		Name:        fmt.Sprintf("verses_%d%s", s.now().UnixMilli(), c.Extension()),
		ContentType: c.ContentType(),
		Data:        buf.Bytes(),
		Count:       len(items),
	}, nil
}

// importRequest carries one import through the executor steps.
type importRequest struct {
	format string
	body   io.Reader
	codec  codec.Codec
}

// Import appends every element of the document in body to the collection and
// returns how many were added. Imported IDs are kept unless blank or taken.
// Only one import runs at a time.
func (s *AdminService) Import(ctx context.Context, format string, body io.Reader) (_ int, err error) {
	ctx, span := telemetry.Start(ctx, "verse.import", attribute.String("verse.format", format))
	defer func() { telemetry.End(span, err) }()

	if !s.importMu.TryLock() {
		return 0, domain.NewConflictError("import", domain.MsgImportInProgress)
	}
	defer s.importMu.Unlock()

	op := Operation[*importRequest, []codec.Entry, []domain.Quotation, int]{
		Name:     "import-quotations",
		Validate: s.validateImport,
		Perform:  s.parseImport,
		Verify:   s.verifyImport,
		Archive:  s.archiveImport,
		Respond: func(_ context.Context, _ *importRequest, verified []domain.Quotation) (int, error) {
			return len(verified), nil
		},
	}

	n, err := Execute(ctx, s.executor, op, &importRequest{format: format, body: body})
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("verse.imported", n))
	importedTotal.Add(float64(n))

	return n, nil
}

func (s *AdminService) validateImport(_ context.Context, req *importRequest) error {
	if req.body == nil {
		return domain.NewValidationError("file", domain.MsgParseFailed)
	}

	c, err := codec.ForFormat(strings.TrimPrefix(req.format, "."))
	if err != nil {
		return domain.NewValidationError("format", domain.MsgBadFileFormat)
	}

	req.codec = c

	return nil
}

func (s *AdminService) parseImport(_ context.Context, req *importRequest) ([]codec.Entry, error) {
	entries, err := req.codec.Parse(req.body)

	switch {
	case errors.Is(err, codec.ErrMalformed):
		return nil, domain.NewValidationError("file", domain.MsgParseFailed)
	case errors.Is(err, codec.ErrNotAList):
		return nil, domain.NewValidationError("file", domain.MsgBadFileFormat)
	case err != nil:
		return nil, err
	}

	return entries, nil
}

func (s *AdminService) verifyImport(ctx context.Context, _ *importRequest, entries []codec.Entry) ([]domain.Quotation, error) {
	var problems []string

	for _, e := range entries {
		if e.Problem != "" {
			problems = append(problems, e.Problem)
		}
	}

	if len(problems) > 0 {
		if s.cfg.StrictImport {
			return nil, domain.NewValidationError("file", domain.MsgBadFileFormat, problems...)
		}

		logging.FromContext(ctx).WarnContext(ctx, "importing malformed elements as-is",
			slog.Int("malformed", len(problems)),
			slog.String("first", problems[0]),
		)
	}

	return codec.Quotations(entries), nil
}

func (s *AdminService) archiveImport(ctx context.Context, _ *importRequest, imported []domain.Quotation) error {
	return s.repo.Mutate(ctx, func(items []domain.Quotation) ([]domain.Quotation, error) {
		taken := make(map[string]bool, len(items))
		for _, q := range items {
			taken[q.ID] = true
		}

		assignIDs(imported, taken)

		return append(items, imported...), nil
	})
}
