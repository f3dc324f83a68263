// Package websocket provides WebSocket transport for the Maze Chase game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every step, steer or reset
//   - Inbound steering commands
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns every connection. Its Run loop is the only goroutine that
// touches the client registry; each client has a read pump and a write pump.
//
// Message Protocol:
//
//   - Incoming: {"action": "steer", "direction": "up"} or {"action": "ping"}
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// A steer command is applied through the hub's SteerFunc and the resulting
// state is broadcast to every client of the session. Failures are answered
// with an "error" event to the sender only.
//
// Usage:
//
//	hub := websocket.NewHub(gameService.Steer)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
