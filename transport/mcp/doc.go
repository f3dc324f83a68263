// Package mcp exposes the Maze Chase REST API as Model Context Protocol tools.
//
// The Client owns an mcp-go server whose tool handlers call the REST API over
// HTTP, so an agent sees the same sessions as browsers and websocket clients.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: grid, lives, points, danger level and 3x3 local view
//   - steer: set the heading without advancing time
//   - step: optionally steer, then advance up to engine.MaxStepTicks ticks
//   - reset_game
//   - tick_history: paginated tick records
//   - describe_cell: walls, items and agents on one cell
//   - list_configs, game_instructions
//
// Transport Modes:
//
//	// Stdio
//	server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer())
//
//	// HTTP: POST JSON-RPC bodies to /mcp
//	resp := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
