// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"sync"

	"livepoll/models"
)

// Update is one tally push delivered to every subscriber of a poll room.
type Update struct {
	Type   string        `json:"type"`
	PollID string        `json:"poll_id"`
	Poll   *models.Tally `json:"poll"`
}

// Client is one live connection's subscription handle. Updates are
// delivered on a buffered channel; the transport layer drains it.
type Client struct {
	send   chan Update
	closed bool
}

// Updates returns the channel the client's transport should drain.
// The channel is closed when the client is dropped from the hub.
func (c *Client) Updates() <-chan Update {
	return c.send
}

// Hub tracks which live connections are subscribed to which poll room and
// fans tally updates out to them. All methods are safe for concurrent use.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]struct{}
	// membership per client, so Drop can leave every room without scanning
	joined map[*Client]map[string]struct{}
}

func New() *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		joined: make(map[*Client]map[string]struct{}),
	}
}

// NewClient registers a connection with the hub. The buffer bounds how far
// a slow consumer may lag before updates are dropped for it.
func (h *Hub) NewClient(buffer int) *Client {
	c := &Client{send: make(chan Update, buffer)}
	h.mu.Lock()
	h.joined[c] = make(map[string]struct{})
	h.mu.Unlock()
	return c
}

// Subscribe adds the client to a poll's room.
func (h *Hub) Subscribe(c *Client, pollID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	room := h.rooms[pollID]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[pollID] = room
	}
	room[c] = struct{}{}
	h.joined[c][pollID] = struct{}{}
}

// Unsubscribe removes the client from a poll's room.
func (h *Hub) Unsubscribe(c *Client, pollID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leave(c, pollID)
	if joined, ok := h.joined[c]; ok {
		delete(joined, pollID)
	}
}

// Drop removes the client from every room it joined and closes its update
// channel. Safe to call more than once; no membership is leaked.
func (h *Hub) Drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	for pollID := range h.joined[c] {
		h.leave(c, pollID)
	}
	delete(h.joined, c)
	c.closed = true
	close(c.send)
}

// Publish delivers a tally to every current subscriber of the poll's room.
// Delivery is best-effort and fire-and-forget: a subscriber whose buffer is
// full misses this update rather than blocking the publisher, and one that
// joins afterwards simply waits for the next commit.
func (h *Hub) Publish(pollID string, tally *models.Tally) {
	update := Update{Type: models.LiveVoteUpdate, PollID: pollID, Poll: tally}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[pollID] {
		select {
		case c.send <- update:
		default:
		}
	}
}

// RoomSize reports the current number of subscribers for a poll.
func (h *Hub) RoomSize(pollID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[pollID])
}

// leave removes room membership; caller holds h.mu.
func (h *Hub) leave(c *Client, pollID string) {
	room := h.rooms[pollID]
	if room == nil {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, pollID)
	}
}
