// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package websocket streams map view updates to browsers.

It uses gorilla/websocket with a hub-and-client layout:

  - Hub: owns the client set and routes messages, run as a supervised service
  - Client: one connection with a read and a write goroutine
  - Message: {"type", "view_id", "data"} envelope

A client follows one map view, or every view when mounted without one. A
message carrying a ViewID reaches the clients following that view and the
unscoped clients; a message without one reaches everybody.

Message Types:

  - view_update: a views.Update after a sync, click, move, filter change or unmount
  - catalog_change: a catalog.Event after a listing mutation
  - ping / pong: client keepalive
  - follow / following: a client switches to the view named by view_id

Usage:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	registry.Subscribe(func(u views.Update) {
	    hub.BroadcastViewUpdate(u.ViewID, u)
	})

	client := websocket.NewClient(hub, conn, viewID)
	hub.Register <- client
	client.Start()

Delivery never blocks the publisher: a full hub queue drops the message and
a client whose buffer is full is disconnected.
*/
package websocket
