package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/fdio"
	"github.com/printpipe/sidechannel-go/pkg/log"
	"github.com/printpipe/sidechannel-go/pkg/sidechannel"
	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// Default server timing.
const (
	// DefaultPollInterval bounds each wait for a request so cancellation is
	// noticed.
	DefaultPollInterval = 250 * time.Millisecond

	// DefaultReplyTimeout bounds the wait for the descriptor to accept a reply.
	DefaultReplyTimeout = 5 * time.Second
)

// Config configures a Server.
type Config struct {
	// Logger is used for operational logging.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger receives capture events for every frame.
	// If nil, capture is disabled.
	ProtocolLogger log.Logger

	// PollInterval bounds each wait for a request. Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// ReplyTimeout bounds each reply write. Zero polls once and a negative
	// value waits without limit. Nil selects DefaultReplyTimeout.
	ReplyTimeout *time.Duration
}

// Server answers side-channel requests one at a time.
type Server struct {
	ch      *sidechannel.Channel
	handler Handler
	logger  *slog.Logger
	poll    time.Duration
	reply   time.Duration
	buf     []byte
	served  int
}

// NewServer creates a Server reading requests from d.
func NewServer(d fdio.Descriptor, h Handler, cfg Config) *Server {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	reply := DefaultReplyTimeout
	if cfg.ReplyTimeout != nil {
		reply = *cfg.ReplyTimeout
	}

	return &Server{
		ch: sidechannel.New(d, sidechannel.Config{
			Logger:         cfg.Logger,
			ProtocolLogger: cfg.ProtocolLogger,
			Role:           log.RoleBackend,
		}),
		handler: h,
		logger:  cfg.Logger,
		poll:    cfg.PollInterval,
		reply:   reply,
		buf:     make([]byte, wire.MaxData),
	}
}

// Served returns the number of requests answered so far.
func (s *Server) Served() int {
	return s.served
}

// Serve answers requests until ctx is cancelled or the filter closes its
// end of the channel. It returns nil when the peer closes, ctx.Err() on
// cancellation and the failure on a hard I/O error. Malformed requests are
// logged and skipped.
func (s *Server) Serve(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := s.ch.Receive(s.buf, s.poll)
		if err != nil {
			switch {
			case errors.Is(err, wire.ErrTimeout):
				continue
			case errors.Is(err, io.EOF):
				s.debug("filter closed side channel", "served", s.served)
				return nil
			case errors.Is(err, wire.ErrIO):
				return err
			default:
				s.debug("skipping malformed request", "error", err)
				continue
			}
		}

		if err := s.answer(ctx, msg); err != nil {
			return err
		}
	}
}

// answer runs the handler for one request and writes the reply.
func (s *Server) answer(ctx context.Context, msg wire.Message) error {
	resp := s.handler.ServeSideChannel(ctx, Request{Command: msg.Command, Data: msg.Data})
	if len(resp.Data) > wire.MaxData {
		resp = Fail(wire.StatusTooBig)
	}

	s.debug("answering request",
		"command", msg.Command.String(),
		"status", resp.Status.String(),
		"data_len", len(resp.Data))

	if err := s.ch.Send(msg.Command, resp.Status, resp.Data, s.reply); err != nil {
		if errors.Is(err, wire.ErrTimeout) {
			s.debug("reply not accepted in time", "command", msg.Command.String())
			return nil
		}
		return err
	}
	s.served++
	return nil
}

func (s *Server) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
