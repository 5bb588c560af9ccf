// Package cli provides the healthwise command line tool. It runs the same
// services as the HTTP server against the configured store.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/app"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/config"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/logger"
)

// AppFactory builds the services a command runs against
type AppFactory func(ctx context.Context, verbose bool) (*app.App, error)

// CLI represents the healthwise command line application
type CLI struct {
	Verbose bool
	Out     io.Writer
	newApp  AppFactory
}

// New creates a CLI that loads configuration from the environment
func New() *CLI {
	return &CLI{Out: os.Stdout, newApp: loadApp}
}

// NewWithFactory creates a CLI over a custom app factory
func NewWithFactory(out io.Writer, factory AppFactory) *CLI {
	return &CLI{Out: out, newApp: factory}
}

// CreateRootCommand creates and configures the root command
func (c *CLI) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "healthwise",
		Short: "Natural health assistant tools",
		Long: `healthwise runs the assistant against the configured store: analyze text,
look up remedies, chat, and move data in and out.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(c.Out)
	rootCmd.SetErr(c.Out)

	rootCmd.PersistentFlags().BoolVarP(&c.Verbose, "verbose", "v", false, "Log to stderr")

	c.addAssistantCommands(rootCmd)
	c.addDataCommands(rootCmd)
	c.addCheckCommand(rootCmd)

	return rootCmd
}

// withApp builds the app, runs fn and closes the store
func (c *CLI) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := c.newApp(ctx, c.Verbose)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func loadApp(ctx context.Context, verbose bool) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := zap.NewNop()
	if verbose {
		log, err = logger.New("development", cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	// streaming pauses are for the chat UI
	cfg.Streaming.WordDelay = 0
	cfg.Streaming.FollowUpDelay = 0

	return app.New(ctx, cfg, log)
}
