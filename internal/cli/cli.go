package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tensionlab/pkg/buildinfo"
	"github.com/matzehuels/tensionlab/pkg/config"
	"github.com/matzehuels/tensionlab/pkg/state"
	"github.com/matzehuels/tensionlab/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tensionlab"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tensionlab solves and draws a two-cable statics diagram",
		Long:         `Tensionlab computes cable tensions, anchor reactions and pivot torques for a load held by two cables, places readable labels around the diagram, and keeps the diagram state in a shareable URL query and a storage blob.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tensionlab/config.toml)")

	// Register all subcommands
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.labelsCommand())
	root.AddCommand(c.stateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.storageCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Storage
// =============================================================================

// config loads the configuration once per invocation.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath, "backend", cfg.Storage.Backend)
	c.cfg = &cfg
	return cfg, nil
}

// defaults returns the configured starting diagram.
func (c *CLI) defaults() (state.State, error) {
	cfg, err := c.config()
	if err != nil {
		return state.State{}, err
	}
	return cfg.DefaultState()
}

// openStorage connects the configured backend, showing a spinner while
// remote backends dial.
func (c *CLI) openStorage(ctx context.Context) (storage.Backend, config.Storage, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, cfg.Storage, err
	}
	spinner := newSpinnerWithContext(ctx, "Connecting to "+cfg.Storage.Backend+" storage...")
	spinner.Start()
	b, err := cfg.Storage.Open(ctx)
	spinner.Stop()
	if err != nil {
		return nil, cfg.Storage, err
	}
	return b, cfg.Storage, nil
}
