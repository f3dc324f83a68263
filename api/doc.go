// Package api provides HTTP REST API handlers for the Maze Chase game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic", "clock": true})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session and stop its clock
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/steer - Set the player heading ({"direction": "up"})
//   - POST /api/sessions/{id}/step - Advance ticks ({"direction": "left", "ticks": 10})
//   - POST /api/sessions/{id}/reset - Rebuild the board from the session config
//   - GET /api/sessions/{id}/history - Tick history (?page&limit&order)
//   - GET|POST /api/sessions/{id}/clock - Real-time ticking ({"running": true})
//
// Configuration:
//   - GET /api/configs - List configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Validate and save a configuration
//
// Every state change is pushed to websocket subscribers of the session
// (GET /ws?session={id}).
//
// Errors are returned as JSON:
//
//	{"error": "session not found: ab12"}
//
// Unknown sessions and configs answer 404, invalid input 400.
package api
