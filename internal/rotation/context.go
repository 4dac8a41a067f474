package rotation

import (
	"sync"

	"croprotation/domain/core"
	domainRotation "croprotation/domain/rotation"
	"croprotation/internal"
)

// Context holds the active strategy and runs it. The active slot may be
// swapped at runtime; reads and writes are guarded so a concurrent execution
// never observes a half-applied swap.
type Context struct {
	mu       sync.RWMutex
	strategy Strategy
	logger   *internal.Logger
}

// NewContext creates a context with an optional initial strategy
func NewContext(initial Strategy) *Context {
	return &Context{
		strategy: initial,
		logger:   internal.DefaultLogger.With("rotation"),
	}
}

// SetStrategy replaces the active strategy. A nil strategy is rejected with
// core.ErrInvalidStrategy and leaves the active strategy untouched.
func (c *Context) SetStrategy(s Strategy) error {
	if s == nil {
		return core.ErrInvalidStrategy
	}
	c.mu.Lock()
	c.strategy = s
	c.mu.Unlock()
	return nil
}

// UseKey activates the registered strategy for key
func (c *Context) UseKey(key domainRotation.StrategyKey) error {
	s, err := Lookup(key)
	if err != nil {
		return err
	}
	return c.SetStrategy(s)
}

// Strategy returns the active strategy, or nil when none is set
func (c *Context) Strategy() Strategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strategy
}

// ExecuteRotation delegates to the active strategy and returns its ordered
// result unmodified
func (c *Context) ExecuteRotation(plan domainRotation.PlanContext) ([]domainRotation.ScoredCrop, error) {
	s := c.Strategy()
	if s == nil {
		return nil, core.ErrNoStrategySelected
	}

	c.logger.Debug("Executing %s strategy", s.Name())
	return s.CalculateRotation(plan), nil
}

// GetAvailableStrategies returns freshly constructed instances of every
// registered strategy, keyed by strategy key
func (c *Context) GetAvailableStrategies() map[domainRotation.StrategyKey]Strategy {
	return AvailableStrategies()
}
