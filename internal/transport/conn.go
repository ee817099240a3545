package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// DefaultMaxMessageBytes matches the browser's limit on host-to-extension messages.
const DefaultMaxMessageBytes = 1 << 20

const headerLength = 4

// ErrMessageTooLarge is returned for frames above the configured maximum.
var ErrMessageTooLarge = errors.New("transport: message exceeds size limit")

// Handler answers one inbound message. A nil reply sends nothing. A non-nil
// error stops Serve after the reply, if any, has been written.
type Handler func(ctx context.Context, msg []byte) ([]byte, error)

// Conn frames messages over a reader/writer pair.
type Conn struct {
	r   io.Reader
	w   io.Writer
	max int
	log *slog.Logger

	wmu sync.Mutex
}

// Option configures a Conn.
type Option func(*Conn)

// WithMaxMessageBytes caps inbound and outbound frame size.
func WithMaxMessageBytes(n int) Option {
	return func(c *Conn) {
		if n > 0 {
			c.max = n
		}
	}
}

// WithLogger sets the logger for dropped frames.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conn) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a Conn reading frames from r and writing frames to w.
func New(r io.Reader, w io.Writer, opts ...Option) *Conn {
	c := &Conn{r: r, w: w, max: DefaultMaxMessageBytes, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReadMessage reads one frame. It returns io.EOF when the stream ends cleanly
// between frames. An oversized frame is skipped and reported as
// ErrMessageTooLarge; the stream stays aligned.
func (c *Conn) ReadMessage() ([]byte, error) {
	var header [headerLength]byte
	if _, err := io.ReadFull(c.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read message header: %w", err)
	}
	n := binary.NativeEndian.Uint32(header[:])
	if uint64(n) > uint64(c.max) {
		if _, err := io.CopyN(io.Discard, c.r, int64(n)); err != nil {
			return nil, fmt.Errorf("skip oversized message: %w", err)
		}
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrMessageTooLarge, n, c.max)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read message payload: %w", err)
	}
	return payload, nil
}

// WriteMessage writes one frame. Concurrent writers are serialized.
func (c *Conn) WriteMessage(msg []byte) error {
	if len(msg) > c.max {
		return fmt.Errorf("%w: %d > %d bytes", ErrMessageTooLarge, len(msg), c.max)
	}
	frame := make([]byte, headerLength+len(msg))
	binary.NativeEndian.PutUint32(frame[:headerLength], uint32(len(msg)))
	copy(frame[headerLength:], msg)

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.w.Write(frame); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

type frame struct {
	msg []byte
	err error
}

// Serve reads frames and passes them to h until the stream ends (nil), ctx
// is cancelled (ctx.Err()), reading fails, or h returns an error. The reader
// goroutine exits once it next finishes a read after Serve returns.
func (c *Conn) Serve(ctx context.Context, h Handler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan frame)
	go func() {
		for {
			msg, err := c.ReadMessage()
			select {
			case frames <- frame{msg: msg, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil && !errors.Is(err, ErrMessageTooLarge) {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-frames:
			switch {
			case errors.Is(f.err, io.EOF):
				return nil
			case errors.Is(f.err, ErrMessageTooLarge):
				c.log.Warn("dropped inbound message", "error", f.err)
				continue
			case f.err != nil:
				return f.err
			}

			reply, herr := h(ctx, f.msg)
			if reply != nil {
				if err := c.WriteMessage(reply); err != nil {
					return err
				}
			}
			if herr != nil {
				return herr
			}
		}
	}
}
