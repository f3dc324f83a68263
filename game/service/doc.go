// Package service provides the business logic layer for the Maze Chase game.
//
// The service package implements:
//   - Multi-session game management
//   - Steering and tick stepping per session
//   - Real-time clocks that tick sessions at their configured rate
//   - Paginated tick history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP/WebSocket/MCP/terminal)
// and the game engine. Each session owns its own engine; all engine access goes
// through the service lock, so a Clock and a REST caller can drive the same
// session safely.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Step(ctx, info.ID, "left", 5)
//
//	clock := service.NewClock(gameService, func(id string, r *service.StepResult) {
//		hub.BroadcastToSession(id, r.GameState)
//	})
//	clock.Start(info.ID)
package service
