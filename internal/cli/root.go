package cli

import (
	"errors"
	"io"

	"github.com/kouk/grawity-code/internal/config"
	"github.com/kouk/grawity-code/internal/database"
	"github.com/kouk/grawity-code/internal/logging"
	"github.com/kouk/grawity-code/internal/presence"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// errReported is returned after the error line has already been written.
var errReported = errors.New("rwho data unavailable")

type app struct {
	v          *viper.Viper
	configPath string
	clock      quartz.Clock
}

// NewRootCmd builds the rwho command tree. Output goes to the command's
// configured writers.
func NewRootCmd() *cobra.Command {
	return newRootCmd(quartz.NewReal())
}

func newRootCmd(clock quartz.Clock) *cobra.Command {
	a := &app{v: config.New(), clock: clock}

	cmd := &cobra.Command{
		Use:   "rwho [user|user@host]",
		Short: "Show who is logged in across the fleet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var q string
			if len(args) > 0 {
				q = args[0]
			}
			return a.runQuery(cmd, q)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default ./config.yaml)")
	flags.String("db", "", "path to the session database")
	flags.Int64("max-age", 0, "seconds after which a session is flagged stale")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("database.path", flags.Lookup("db"))
	_ = a.v.BindPFlag("presence.max_age", flags.Lookup("max-age"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	cmd.AddCommand(a.serveCmd(), a.migrateCmd())
	return cmd
}

// loadConfig reads the configuration and builds the logger.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, slog.Logger, error) {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return nil, slog.Logger{}, err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return nil, slog.Logger{}, err
	}
	if cfg.Presence.RefreshInterval > 0 && cfg.Presence.MaxAge <= cfg.Presence.RefreshInterval {
		logger.Warn(cmd.Context(), "max age does not exceed the refresh interval, rows will flap stale",
			slog.F("max_age", cfg.Presence.MaxAge),
			slog.F("refresh_interval", cfg.Presence.RefreshInterval))
	}
	return cfg, logger, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (a *app) runQuery(cmd *cobra.Command, q string) error {
	cfg, logger, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	filter := presence.ParseQuery(q)

	// queries only read: a missing store is reported, never created
	db, err := database.InitReadOnly(cfg.Database)
	if err != nil {
		logger.Debug(ctx, "open session store", slog.F("path", cfg.Database.Path), slog.Error(err))
		_ = presence.RenderError(cmd.ErrOrStderr())
		return errReported
	}
	defer closeDB(db)

	rows, err := presence.Lookup(ctx, database.NewSessionStore(db), filter)
	if err != nil {
		logger.Debug(ctx, "retrieve sessions", slog.F("filter", filter.String()), slog.Error(err))
		_ = presence.RenderError(cmd.ErrOrStderr())
		return errReported
	}
	return presence.RenderText(cmd.OutOrStdout(), rows, a.clock.Now(), cfg.Presence.MaxAgeDuration())
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the utmp table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := database.Init(cfg.Database)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			logger.Info(cmd.Context(), "schema up to date", slog.F("path", cfg.Database.Path))
			return nil
		},
	}
}

// Execute runs the root command and reports whether it succeeded.
func Execute(stdout, stderr io.Writer, args []string) int {
	cmd := NewRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			_, _ = io.WriteString(stderr, "error: "+err.Error()+"\n")
		}
		return 1
	}
	return 0
}
