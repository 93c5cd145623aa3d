package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tensionlab/pkg/config"
	"github.com/matzehuels/tensionlab/pkg/storage"
)

// storageCommand creates the storage management command.
func (c *CLI) storageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage the local state blob directory",
	}

	cmd.AddCommand(c.storageClearCommand())
	cmd.AddCommand(c.storagePathCommand())

	return cmd
}

// storageDir returns the file backend directory from config, or the XDG
// cache directory when none is set.
func (c *CLI) storageDir() (string, error) {
	cfg, err := c.config()
	if err != nil {
		return "", err
	}
	if cfg.Storage.Dir != "" {
		return cfg.Storage.Dir, nil
	}
	dir, err := config.CacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}

// storageClearCommand creates the "storage clear" subcommand.
func (c *CLI) storageClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored state blob",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.storageDir()
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Storage is empty")
				return nil
			}

			b, err := storage.NewFileBackend(dir)
			if err != nil {
				return err
			}
			count, err := b.Clear()
			if err != nil {
				return err
			}

			printSuccess("Cleared %d stored states", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// storagePathCommand creates the "storage path" subcommand.
func (c *CLI) storagePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the storage directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.storageDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
