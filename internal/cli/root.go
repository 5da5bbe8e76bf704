package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiritoko1029/glmcode/internal/config"
	"github.com/kiritoko1029/glmcode/internal/platform"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	token   string
	baseURL string
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "glm-usage",
		Short: "GLM Coding Plan usage monitor",
		Long: `Queries model usage, tool usage and quota limits of a GLM Coding Plan
on Z.ai or ZHIPU (bigmodel.cn).

Credentials come from ANTHROPIC_AUTH_TOKEN and ANTHROPIC_BASE_URL, the config
file, or the env block of ~/.claude/settings.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportCmd.RunE(cmd, args)
		},
	}
)

// requestError marks failures that happened while talking to the monitor API.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/glm-usage/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "auth token (overrides "+config.EnvAuthToken+")")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "base URL (overrides "+config.EnvBaseURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log HTTP traffic to stderr")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(performanceCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)

	rootCmd.Flags().BoolP("summary", "s", false, "Print a quota table after the report")
}

func setup(cmd *cobra.Command) (*config.Config, *platform.Target, zerolog.Logger, error) {
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, logger, fmt.Errorf("failed to load config: %w", err)
	}
	if token != "" {
		cfg.AuthToken = token
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	target, err := platform.Resolve(cfg.Credentials())
	if err != nil {
		return nil, nil, logger, err
	}
	logger.Debug().Str("platform", string(target.Platform)).Str("quota_url", target.Endpoints.QuotaLimit).Msg("resolved platform")

	return cfg, target, logger, nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// withTimeout bounds ctx only when a timeout is configured.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func printError(w io.Writer, err error) {
	var cfgErr *platform.ConfigError
	var reqErr *requestError
	switch {
	case errors.As(err, &cfgErr):
		fmt.Fprintf(w, "Error: %s\n", cfgErr.Message)
		if len(cfgErr.Hints) > 0 {
			fmt.Fprintln(w)
			for _, h := range cfgErr.Hints {
				fmt.Fprintln(w, h)
			}
		}
	case errors.As(err, &reqErr):
		fmt.Fprintf(w, "Request failed: %s\n", reqErr.err)
	default:
		fmt.Fprintf(w, "Error: %s\n", err)
	}
}
