package commands

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"passlink/internal/app"
	"passlink/internal/store"
)

const passphraseEnv = "PASSLINK_PASSPHRASE"

var (
	home       string
	configPath string
	storePath  string
	passphrase string

	wire      *app.Wire
	logCloser io.Closer
)

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "passlink",
		Short:        "Native-messaging credential host for browser extensions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				home = app.DefaultHome()
			}
			if configPath == "" {
				configPath = filepath.Join(home, "config.yaml")
			}
			cfg, err := app.LoadConfig(configPath, home)
			if err != nil {
				return err
			}
			if storePath != "" {
				cfg.Store.Path = storePath
			}
			if passphrase == "" {
				passphrase = os.Getenv(passphraseEnv)
			}

			log, closer, err := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logCloser = closer
			wire = app.NewWire(cfg, log)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.passlink)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVar(&storePath, "store", "", "credential database file (overrides config)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "database passphrase (or $"+passphraseEnv+")")

	root.AddCommand(hostCmd(), matchCmd(), checkURLCmd(), storeCmd())
	return root
}

func requirePassphrase() error {
	if passphrase == "" {
		return errors.New("passphrase required (-p or $" + passphraseEnv + ")")
	}
	return nil
}

func openDatabase() (*store.Database, error) {
	if err := requirePassphrase(); err != nil {
		return nil, err
	}
	return wire.OpenDatabase(passphrase)
}
