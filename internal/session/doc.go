// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session hosts many independent conversations.
//
// Each conversation has its own chat.Engine, and with it its own history
// and clarification state. Requests to one conversation are serialized:
// a request that arrives while another is being answered fails with
// ErrBusy instead of queueing. Different conversations run in parallel.
//
// Conversations idle for longer than Config.IdleTimeout are removed by
// Sweep, which Run calls periodically.
//
// # Usage
//
//	mgr := session.NewManager(func() *chat.Engine { return chat.New(c, opts) }, session.DefaultConfig())
//	go mgr.Run(ctx)
//
//	info, _ := mgr.Create()
//	reply, err := mgr.Ask(ctx, info.ID, "what sensors does it have")
//	if errors.Is(err, session.ErrBusy) {
//	    // try again later
//	}
package session
