package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/config"
	"github.com/abhisek/lingo/internal/explain"
	"github.com/abhisek/lingo/internal/llm"
	"github.com/abhisek/lingo/internal/logging"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lingo",
	Short: "Learn a language in your terminal",
	Long:  "Lingo is a terminal language course: bite-sized lessons, hearts and points.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, false, 0)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite path or postgres:// URL (overrides LINGO_DATABASE_URL)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("user", "", "Learner ID (overrides LINGO_USER_ID)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// env is what every data command needs: settings, a logger and an open,
// seeded store.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	logs   io.Closer
}

// loadConfig reads the config file and environment, then applies the
// persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database.URL = db
	}
	if user, _ := cmd.Flags().GetString("user"); user != "" {
		cfg.User.ID = user
	}
	return cfg, cfg.Validate()
}

// openEnv loads config, sets up logging and opens the store, seeding the
// built-in courses into an empty catalog.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, logs, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	if n, err := st.SeedDefaults(ctx); err != nil {
		st.Close()
		logs.Close()
		return nil, fmt.Errorf("seed courses: %w", err)
	} else if n > 0 {
		logger.Info("seeded built-in courses", "count", n)
	}

	return &env{cfg: cfg, logger: logger, store: st, logs: logs}, nil
}

func (e *env) Close() {
	e.store.Close()
	e.logs.Close()
}

func (e *env) deps() screen.Deps {
	return screen.Deps{Store: e.store, UserID: e.cfg.User.ID, Logger: e.logger}
}

// provider builds the configured LLM provider. ok is false when none is
// configured.
func (e *env) provider(ctx context.Context) (p llm.Provider, ok bool, err error) {
	cfg, ok := llm.Resolve(e.cfg.LLM)
	if !ok {
		return nil, false, nil
	}
	p, err = llm.NewProvider(ctx, cfg, e.store.EventRepo(), e.logger)
	if err != nil {
		return nil, true, err
	}
	return p, true, nil
}

// explainer returns an explanation service, or nil when no provider is
// usable. AI features are optional, so failures are only logged.
func (e *env) explainer(ctx context.Context) *explain.Service {
	p, ok, err := e.provider(ctx)
	switch {
	case !ok:
		e.logger.Info("no LLM provider configured; explanations disabled")
		return nil
	case err != nil:
		e.logger.Warn("LLM provider unavailable; explanations disabled", "error", err)
		return nil
	}
	return explain.NewService(p, explain.DefaultConfig())
}
