package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/dotboxd/dotboxd/internal/config"
	"github.com/dotboxd/dotboxd/internal/room"
	"github.com/dotboxd/dotboxd/internal/server"
)

// Handler dispatches accepted connections to per-connection coordinators.
// It implements server.SessionHandler.
type Handler struct {
	registry *room.Registry
	hub      *Hub
	cfg      config.GameConfig
	logger   *zap.Logger
}

// NewHandler creates the session handler shared by all connections.
//
// Precondition: registry, hub, and logger must be non-nil.
func NewHandler(registry *room.Registry, hub *Hub, cfg config.GameConfig, logger *zap.Logger) *Handler {
	return &Handler{
		registry: registry,
		hub:      hub,
		cfg:      cfg,
		logger:   logger,
	}
}

// HandleSession runs one connection's read loop: one frame in, one
// operation dispatched. It returns when the client disconnects, the context
// is cancelled, or the transport fails; cleanup runs exactly once on every
// path.
func (h *Handler) HandleSession(ctx context.Context, conn *server.Conn) error {
	c := NewCoordinator(h.registry, h.hub, h.cfg, h.logger, conn)
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := conn.ReadFrame()
		if err != nil {
			// Transport failure or orderly close; no reply possible.
			return err
		}
		if len(line) == 0 {
			continue
		}
		c.HandleFrame(line)
	}
}
