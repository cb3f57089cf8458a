// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package hub implements poll-room fan-out for live tally updates.

# Rooms

Each poll has a room: the set of live connections that asked to receive
its updates. A connection registers once and may join any number of rooms:

	client := h.NewClient(16)
	h.Subscribe(client, pollID)
	h.Unsubscribe(client, pollID)
	h.Drop(client) // leave everything, close the update channel

Drop is how disconnects are handled; it guarantees no orphaned membership.

# Publishing

	h.Publish(pollID, tally)

Publish copies the tally to every subscriber's buffered channel. Sends are
non-blocking: a subscriber that cannot keep up loses the update instead of
stalling the publisher. There is no replay buffer; a late joiner catches up
on the next committed vote or by reading the poll.

Publishers call Publish strictly after their transaction commits, so a
subscriber never observes a tally that could still roll back.
*/
package hub
