package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/verse-service/internal/adapters/storage"
	"github.com/jsamuelsen/verse-service/internal/app"
	"github.com/jsamuelsen/verse-service/internal/codec"
	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/platform/config"
	"github.com/jsamuelsen/verse-service/internal/platform/logging"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	profile   string
	configDir string
	overrides []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "verse",
		Short: "Daily bilingual verses with an admin console",
		Long: `verse shows a random Chinese/English verse pair per visit and lets an
administrator maintain the collection from a browser or from this CLI.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cmd.PersistentFlags().StringVarP(&opts.profile, "profile", "p", profile, "configuration profile (env APP_ENVIRONMENT)")
	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", config.DefaultDir, "directory holding base.yaml and profile files")
	cmd.PersistentFlags().StringArrayVar(&opts.overrides, "set", nil, "override a config key, e.g. --set admin.strict_import=true")

	cmd.AddCommand(
		newServeCmd(opts),
		newViewCmd(opts),
		newListCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newPasswdCmd(opts),
		newClearCmd(opts),
	)

	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.configDir, o.profile, o.overrides...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// runtime holds the pieces every command needs: config, logger, store and
// the application services over it.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
	store   storage.Store
	repo    *app.Repository
	admin   *app.AdminService
}

// openRuntime loads configuration and opens the store. Logs go to logOut
// and, when enabled, to the rolling log file.
func openRuntime(ctx context.Context, opts *rootOptions, logOut io.Writer) (*runtime, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, logFile := logging.Open(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, logOut)
	logging.SetDefault(logger)

	defaults, err := loadDefaults(cfg.Viewer.DefaultVersesFile)
	if err != nil {
		_ = logFile.Close()

		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		_ = logFile.Close()

		return nil, fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
	}

	repo := app.NewRepository(store, defaults)
	creds := app.NewCredentials(store,
		app.WithDefaultPassword(cfg.Admin.DefaultPassword),
		app.WithMinPasswordLength(cfg.Admin.MinPasswordLength),
	)
	admin := app.NewAdminService(repo, creds,
		app.NewSessions(cfg.Admin.SessionTTL),
		app.NewExecutor(logger),
		app.AdminConfig{StrictImport: cfg.Admin.StrictImport},
	)

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		logFile: logFile,
		store:   store,
		repo:    repo,
		admin:   admin,
	}, nil
}

// context attaches the runtime's logger to ctx.
func (r *runtime) context(ctx context.Context) context.Context {
	return logging.WithContext(ctx, r.logger)
}

// Close closes the store, then the log file.
func (r *runtime) Close() error {
	err := r.store.Close()
	if err != nil {
		r.logger.Error("closing store", slog.Any("error", err))
	}

	if closeErr := r.logFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// loadDefaults reads the verses used when the store holds no collection yet.
// An empty path keeps the bundled defaults.
func loadDefaults(path string) (func() []domain.Quotation, error) {
	if path == "" {
		return nil, nil
	}

	c, err := codec.ForFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("default verses file %s: %w", path, err)
	}

	f, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("opening default verses file: %w", err)
	}
	defer f.Close()

	entries, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing default verses file %s: %w", path, err)
	}

	for i, e := range entries {
		if e.Problem != "" {
			return nil, fmt.Errorf("default verses file %s: entry %d: %s", path, i+1, e.Problem)
		}
	}

	items := codec.Quotations(entries)

	return func() []domain.Quotation {
		return slices.Clone(items)
	}, nil
}
