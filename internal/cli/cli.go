package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grammarcheck/internal/cache"
	"grammarcheck/internal/config"
	"grammarcheck/internal/controller"
	"grammarcheck/internal/ignorelist"
	"grammarcheck/internal/languagetool"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errProblemsFound makes the process exit with status 1 without printing
// an error.
var errProblemsFound = errors.New("language problems found")

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errProblemsFound) {
			log.Error().Err(err).Msg("Command failed")
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "grammarcheck",
		Short: "Check prose with a LanguageTool server",
		Long: `Sends text files to a LanguageTool server (local or public) and reports,
reviews and fixes the problems it finds. Deactivated rules are remembered
in a file or a PostgreSQL table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(languagesCmd())

	return rootCmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// checkFlags are shared by the commands that talk to a server.
type checkFlags struct {
	server   string
	language string
}

func (f *checkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.server, "server", "", "Server to use: local or remote (default from settings)")
	cmd.Flags().StringVar(&f.language, "language", "", "Language tag, auto or autodetect (default from settings)")
}

// apply resolves the server URL and overrides the configured language.
func (f *checkFlags) apply(cfg *config.Config) (string, error) {
	if f.language != "" {
		lang, err := languagetool.NormalizeLanguage(f.language)
		if err != nil {
			return "", err
		}
		cfg.Language = lang
	}
	return cfg.ServerURL(f.server)
}

// newClient builds a check client from the configuration.
func newClient(cfg *config.Config) *languagetool.Client {
	opts := languagetool.Options{
		Format:            cfg.ResponseFormat,
		Method:            cfg.RequestMethod,
		SplitReplacements: cfg.SplitReplacements,
		Timeout:           cfg.CheckTimeout,
	}
	if cfg.CacheDir != "" {
		opts.Cache = cache.NewResponseCache(cfg.CacheDir)
	}
	return languagetool.NewClient(opts)
}

// openIgnoreList connects the configured store and loads the rules. The
// returned func releases the store.
func openIgnoreList(ctx context.Context, cfg *config.Config) (*ignorelist.List, func(), error) {
	var (
		store   ignorelist.Store
		release = func() {}
	)

	switch cfg.IgnoreStore {
	case config.IgnoreStorePostgres:
		pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect PostgreSQL: %w", err)
		}
		if err := pgPool.Ping(ctx); err != nil {
			pgPool.Close()
			return nil, nil, fmt.Errorf("ping PostgreSQL: %w", err)
		}
		log.Info().Msg("Connected to PostgreSQL")
		store = ignorelist.NewPostgresStore(pgPool)
		release = pgPool.Close
	default:
		fs := ignorelist.NewFileStore(cfg.IgnoreFile)
		log.Debug().Str("path", fs.Path()).Msg("Using ignore file")
		store = fs
	}

	list := ignorelist.New(store)
	if err := list.Load(ctx); err != nil {
		release()
		return nil, nil, fmt.Errorf("load ignored rules: %w", err)
	}
	return list, release, nil
}

// sessionOptions maps the configuration onto a session.
func sessionOptions(cfg *config.Config) controller.Options {
	return controller.Options{
		DisplayMode:        controller.DisplayMode(cfg.DisplayMode),
		HighlightStyle:     cfg.HighlightScope,
		IgnoredScopes:      cfg.IgnoredScopes,
		Language:           cfg.Language,
		CheckSelectionOnly: cfg.CheckSelectionOnly,
		SkipPlaceholders:   cfg.SkipPlaceholders,
	}
}
