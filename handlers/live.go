// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"livepoll/auth"
	"livepoll/cliparse"
	"livepoll/hub"
	"livepoll/models"
	"livepoll/vote"
)

// clientBuffer bounds how many undelivered updates a live connection may
// accumulate before further ones are dropped for it.
const clientBuffer = 16

type LiveHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewLiveHandler(db *sql.DB, cfg cliparse.Config, h *hub.Hub) *LiveHandler {
	return &LiveHandler{
		db:  db,
		cfg: cfg,
		hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if cfg.FrontendOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == cfg.FrontendOrigin
			},
		},
	}
}

// Serve handles GET /live
// Upgrades to a websocket, then reads room-control frames until the
// connection drops. Tally updates flow out on a separate goroutine so a
// slow reader never blocks the hub.
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	client := h.hub.NewClient(clientBuffer)
	slog.Info("live connection opened", "remote", r.RemoteAddr)

	go h.writePump(conn, client)
	h.readPump(conn, client)
}

// readPump processes inbound frames. Any read error (including a normal
// close) drops the client from every room it joined.
func (h *LiveHandler) readPump(conn *websocket.Conn, client *hub.Client) {
	defer func() {
		h.hub.Drop(client)
		conn.Close()
		slog.Info("live connection closed", "remote", conn.RemoteAddr().String())
	}()

	for {
		var msg models.LiveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case models.LiveJoinPoll:
			if msg.PollID == "" {
				continue
			}
			h.hub.Subscribe(client, msg.PollID)
			slog.Info("joined poll room", "poll_id", msg.PollID)

		case models.LiveLeavePoll:
			h.hub.Unsubscribe(client, msg.PollID)

		case models.LiveRefresh:
			// Out-of-band refresh: admin-only, pushes a freshly loaded
			// tally to the whole room independent of any vote.
			claims, err := auth.ParseToken(msg.Token, h.cfg.JWTSecret)
			if err != nil || claims.Role != models.RoleAdmin {
				slog.Warn("refresh rejected", "poll_id", msg.PollID)
				continue
			}
			tally, err := vote.LoadTally(h.db, msg.PollID)
			if err != nil {
				slog.Error("failed to load tally for refresh", "error", err, "poll_id", msg.PollID)
				continue
			}
			h.hub.Publish(msg.PollID, tally)
			slog.Info("results refreshed", "poll_id", msg.PollID, "by", claims.UserID)
		}
	}
}

// writePump drains the client's update channel onto the wire. Exits when
// the hub closes the channel (client dropped) or a write fails.
func (h *LiveHandler) writePump(conn *websocket.Conn, client *hub.Client) {
	for update := range client.Updates() {
		if err := conn.WriteJSON(update); err != nil {
			conn.Close()
			return
		}
	}
	conn.Close()
}
