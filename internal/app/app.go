package app

import (
	"context"
	"errors"
	"io"

	"passlink/internal/services/browser"
	"passlink/internal/store"
	"passlink/internal/transport"
)

// ServeHost answers native-messaging requests on r/w from db until the
// extension closes the stream or ctx ends. Every session is wiped on return.
func (w *Wire) ServeHost(ctx context.Context, db *store.Database, r io.Reader, wr io.Writer) error {
	svc := w.Browser(db)
	defer svc.Close()

	conn := transport.New(r, wr,
		transport.WithMaxMessageBytes(w.Config.Host.MaxMessageBytes),
		transport.WithLogger(w.Log.With("component", "transport")),
	)

	w.Log.Info("host started", "entries", db.Len())
	err := conn.Serve(ctx, svc.HandleMessage)
	switch {
	case err == nil:
		w.Log.Info("extension closed the connection")
	case errors.Is(err, browser.ErrTooManyFailures):
		w.Log.Warn("disconnecting client", "error", err)
	case errors.Is(err, context.Canceled):
		w.Log.Info("host stopped")
		return nil
	}
	return err
}
