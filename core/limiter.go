package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrModelCallLimit is returned once a run exhausts its model call budget.
var ErrModelCallLimit = errors.New("model call limit exceeded")

// ModelLimiter bounds the number of model calls a single run may make. A
// tool-calling loop that never converges on a final answer hits this limit
// instead of spinning forever.
type ModelLimiter struct {
	mu    sync.Mutex
	limit int
	used  int
}

// NewModelLimiter returns a limiter allowing limit calls; zero or less means
// unlimited.
func NewModelLimiter(limit int) *ModelLimiter {
	return &ModelLimiter{limit: limit}
}

// Increment records one call. It fails with ErrModelCallLimit when the call
// would exceed the budget.
func (ml *ModelLimiter) Increment() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if ml.limit > 0 && ml.used >= ml.limit {
		return fmt.Errorf("%w: %d", ErrModelCallLimit, ml.limit)
	}
	ml.used++
	return nil
}

// Count returns the number of recorded calls.
func (ml *ModelLimiter) Count() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.used
}

// Remaining returns the calls left, or -1 when unlimited.
func (ml *ModelLimiter) Remaining() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if ml.limit <= 0 {
		return -1
	}
	return ml.limit - ml.used
}
