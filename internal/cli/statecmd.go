package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tensionlab/pkg/config"
	errs "github.com/matzehuels/tensionlab/pkg/errors"
	"github.com/matzehuels/tensionlab/pkg/session"
	"github.com/matzehuels/tensionlab/pkg/state"
	"github.com/matzehuels/tensionlab/pkg/storage"
)

// stateCommand creates the state command and its subcommands.
func (c *CLI) stateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Encode, decode and resolve persisted diagram states",
	}

	cmd.AddCommand(c.stateEncodeCommand())
	cmd.AddCommand(c.stateDecodeCommand())
	cmd.AddCommand(c.stateResolveCommand())
	cmd.AddCommand(c.stateSaveCommand())
	cmd.AddCommand(c.stateClearCommand())

	return cmd
}

// codecFlag resolves the --codec flag, falling back to the configured codec.
func (c *CLI) codecFlag(name string) (state.Codec, error) {
	if name != "" {
		return state.CodecByName(name)
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return cfg.Storage.CodecOrDefault(), nil
}

func (c *CLI) stateEncodeCommand() *cobra.Command {
	var codecName, blobPath string

	cmd := &cobra.Command{
		Use:   "encode [query]",
		Short: "Print the canonical query and optionally write the storage blob",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := c.codecFlag(codecName)
			if err != nil {
				return err
			}
			defaults, err := c.defaults()
			if err != nil {
				return err
			}
			s, err := stateFromArgs(args, defaults)
			if err != nil {
				return err
			}
			query, blob, err := state.Encode(codec, s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), query)

			if blobPath == "" {
				return nil
			}
			if err := writeOutput(cmd.OutOrStdout(), blobPath, blob); err != nil {
				return err
			}
			c.Logger.Debug("wrote blob", "codec", codec.Name(), "bytes", len(blob), "path", blobPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&codecName, "codec", "", "blob codec: json, msgpack (default from config)")
	cmd.Flags().StringVarP(&blobPath, "blob", "b", "", "write the storage blob to this file (- for stdout)")
	return cmd
}

func (c *CLI) stateDecodeCommand() *cobra.Command {
	var codecName string

	cmd := &cobra.Command{
		Use:   "decode <file|->",
		Short: "Decode a storage blob and print its canonical query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := c.codecFlag(codecName)
			if err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			s, err := state.DecodeBlob(codec, data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Query().Encode())
			return nil
		},
	}

	cmd.Flags().StringVar(&codecName, "codec", "", "blob codec: json, msgpack (default from config)")
	return cmd
}

func (c *CLI) stateResolveCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "resolve [query]",
		Short: "Resolve a starting state the way a page load does",
		Long: `Resolve picks the starting state from the query if it holds a complete,
valid state, else from the blob stored for --session, else from defaults.
Invalid sources are reported and skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			}
			return c.runResolve(cmd.Context(), cmd.OutOrStdout(), sessionID, query)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "cli", "session whose stored blob is consulted")
	return cmd
}

func (c *CLI) runResolve(ctx context.Context, out io.Writer, sessionID, rawQuery string) error {
	q, err := parseQueryArg(rawQuery)
	if err != nil {
		return err
	}
	defaults, err := c.defaults()
	if err != nil {
		return err
	}
	store, cfg, closeStore, err := c.sessionStore(ctx, sessionID)
	if err != nil {
		return err
	}
	defer closeStore()

	blob, err := store.Load(ctx)
	if err != nil {
		printWarning("Storage unavailable: %s", errs.UserMessage(err))
		blob = nil
	}

	r := state.Resolve(q, blob, cfg.CodecOrDefault(), defaults)
	for _, rej := range r.Rejected {
		printWarning("Skipped invalid source: %s", errs.UserMessage(rej))
	}
	printKeyValue("Source", r.Source.String())
	printKeyValue("Key", store.Key())
	fmt.Fprintln(out, r.State.Query().Encode())
	return nil
}

func (c *CLI) stateSaveCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "save <query>",
		Short: "Store a state as the blob for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := stateFromArgs(args, state.State{})
			if err != nil {
				return err
			}
			store, cfg, closeStore, err := c.sessionStore(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			defer closeStore()

			_, blob, err := state.Encode(cfg.CodecOrDefault(), s)
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), blob); err != nil {
				return err
			}
			printSuccess("Saved state for session %s", StyleHighlight.Render(sessionID))
			printDetail("%d bytes under %s", len(blob), store.Key())
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "cli", "session to store the blob for")
	return cmd
}

func (c *CLI) stateClearCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored blob for a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, closeStore, err := c.sessionStore(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Cleared state for session %s", StyleHighlight.Render(sessionID))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "cli", "session to clear")
	return cmd
}

// sessionStore opens the configured backend scoped to one session. The
// returned func closes the backend.
func (c *CLI) sessionStore(ctx context.Context, sessionID string) (*session.BackendStore, config.Storage, func(), error) {
	b, cfg, err := c.openStorage(ctx)
	if err != nil {
		return nil, cfg, nil, err
	}
	store, err := session.NewBackendStore(b, cfg.Keyer(), sessionID, cfg.TTL)
	if err != nil {
		_ = b.Close()
		return nil, cfg, nil, err
	}
	return store, cfg, func() { closeBackend(c, b) }, nil
}

func closeBackend(c *CLI, b storage.Backend) {
	if err := b.Close(); err != nil {
		c.Logger.Warn("close storage", "err", err)
	}
}

// readInput reads a file, or stdin when path is "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to a file, or to stdout when path is "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
