// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/campmap/internal/logging"
)

const (
	// writeWait bounds a single frame write, view updates included.
	writeWait = 10 * time.Second

	// idleTimeout closes connections that stop answering pings.
	idleTimeout = 60 * time.Second
	pingEvery   = idleTimeout * 9 / 10

	// Browsers only send small control messages.
	controlReadLimit = 4 * 1024

	// sendBuffer holds view updates queued for a slow browser.
	sendBuffer = 256
)

var nextClientID atomic.Uint64

// Client is one browser connection following a map view.
type Client struct {
	id   uint64
	view atomic.Pointer[string] // "" follows every view
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient creates a client following view, or every view when view is empty.
func NewClient(hub *Hub, conn *websocket.Conn, view string) *Client {
	c := &Client{
		id:   nextClientID.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
	c.view.Store(&view)
	return c
}

// ID orders clients for broadcast.
func (c *Client) ID() uint64 {
	return c.id
}

// View returns the followed view id.
func (c *Client) View() string {
	if v := c.view.Load(); v != nil {
		return *v
	}
	return ""
}

func (c *Client) follow(view string) {
	c.view.Store(&view)
}

// wants reports whether msg is scoped to a view this client follows.
func (c *Client) wants(msg Message) bool {
	view := c.View()
	return view == "" || msg.ViewID == "" || msg.ViewID == view
}

// reply queues a control answer, dropped when the buffer is full.
func (c *Client) reply(msg Message) {
	select {
	case c.send <- msg:
	default:
	}
}

// handleControl answers ping and switches views on follow.
func (c *Client) handleControl(msg Message) {
	switch msg.Type {
	case MessageTypePing:
		c.reply(Message{Type: MessageTypePong, ViewID: c.View()})
	case MessageTypeFollow:
		c.follow(msg.ViewID)
		logging.Debug().Uint64("client", c.id).Str("view", msg.ViewID).Msg("websocket client switched view")
		c.reply(Message{Type: MessageTypeFollowing, ViewID: msg.ViewID})
	}
}

// readLoop consumes control messages until the connection fails, then
// unregisters the client.
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(controlReadLimit)
	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	}
	if err := extend(""); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(extend)

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Str("view", c.View()).Msg("unexpected websocket close error")
			}
			return
		}
		c.handleControl(msg)
	}
}

// write sends one frame under a fresh deadline. A nil msg sends frameType
// with an empty payload.
func (c *Client) write(frameType int, msg *Message) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if msg == nil {
		return c.conn.WriteMessage(frameType, nil)
	}
	return c.conn.WriteJSON(msg)
}

// writeLoop drains the send buffer and keeps the connection alive. It ends
// when the hub closes the buffer or a write fails.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				if err := c.write(websocket.CloseMessage, nil); err != nil {
					logging.Debug().Err(err).Msg("failed to write close message")
				}
				return
			}
			if err := c.write(websocket.TextMessage, &msg); err != nil {
				logging.Error().Err(err).Str("type", msg.Type).Msg("failed to write websocket message")
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start runs the read and write loops.
func (c *Client) Start() {
	go c.writeLoop()
	go c.readLoop()
}
