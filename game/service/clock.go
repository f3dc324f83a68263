package service

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// TickFunc receives the result of every clock-driven step
type TickFunc func(sessionID string, result *StepResult)

type clockRun struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Clock drives sessions in real time: one tick per config tick interval until
// the game is over or the clock is stopped.
type Clock struct {
	service GameService
	onTick  TickFunc

	mu   sync.Mutex
	runs map[string]*clockRun
}

// NewClock creates a clock over svc. onTick may be nil.
func NewClock(svc GameService, onTick TickFunc) *Clock {
	return &Clock{
		service: svc,
		onTick:  onTick,
		runs:    make(map[string]*clockRun),
	}
}

// Start begins ticking sessionID. Starting a running session is a no-op.
func (c *Clock) Start(sessionID string) error {
	info, err := c.service.GetSession(context.Background(), sessionID)
	if err != nil {
		return err
	}
	interval := time.Duration(info.GameConfig.TickInterval()) * time.Millisecond

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.runs[sessionID]; ok {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &clockRun{cancel: cancel, done: make(chan struct{})}
	c.runs[sessionID] = run

	go c.loop(ctx, sessionID, interval, run)

	log.WithFields(log.Fields{"session": sessionID, "interval": interval}).Info("clock started")
	return nil
}

func (c *Clock) loop(ctx context.Context, sessionID string, interval time.Duration, run *clockRun) {
	defer close(run.done)
	defer c.forget(sessionID, run)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := c.service.Step(ctx, sessionID, "", 1)
			if err != nil {
				log.WithError(err).WithField("session", sessionID).Warn("clock stopped")
				return
			}
			if c.onTick != nil {
				c.onTick(sessionID, result)
			}
			if result.GameOver {
				log.WithFields(log.Fields{"session": sessionID, "victory": result.Victory}).Info("clock finished")
				return
			}
		}
	}
}

func (c *Clock) forget(sessionID string, run *clockRun) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runs[sessionID] == run {
		delete(c.runs, sessionID)
	}
}

// Stop halts the clock for sessionID and waits for its loop to exit.
// It reports whether a clock was running.
func (c *Clock) Stop(sessionID string) bool {
	c.mu.Lock()
	run, ok := c.runs[sessionID]
	if ok {
		delete(c.runs, sessionID)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	run.cancel()
	<-run.done
	log.WithField("session", sessionID).Info("clock stopped")
	return true
}

// Running reports whether sessionID is being ticked
func (c *Clock) Running(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.runs[sessionID]
	return ok
}

// StopAll halts every running clock
func (c *Clock) StopAll() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.runs))
	for id := range c.runs {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		c.Stop(id)
	}
}
