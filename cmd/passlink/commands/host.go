package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func hostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "host [origin]",
		Short: "Serve the browser extension over stdin/stdout",
		Long: "Serve the browser extension over stdin/stdout.\n\n" +
			"Browsers start the host with the calling extension's origin (or the\n" +
			"manifest path and extension id); it is logged and otherwise ignored.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				wire.Log.Info("started by browser", "origin", args[0])
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return wire.ServeHost(ctx, db, os.Stdin, os.Stdout)
		},
	}
}
