package sagas

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step is a single step in a saga. Compensate, when set, undoes the step's
// side effects if a later step fails.
type Step struct {
	Name       string
	Execute    func(ctx context.Context, data interface{}) (interface{}, error)
	Compensate func(ctx context.Context, data interface{}) error
	MaxRetries int
	RetryDelay time.Duration
}

// State represents the current state of a saga execution
type State string

const (
	StatePending      State = "PENDING"
	StateRunning      State = "RUNNING"
	StateCompleted    State = "COMPLETED"
	StateFailed       State = "FAILED"
	StateCompensating State = "COMPENSATING"
	StateCompensated  State = "COMPENSATED"
)

// Saga orchestrates a series of steps with compensation logic. Compensations
// run in reverse order of the completed steps.
type Saga struct {
	name          string
	steps         []Step
	compensations []func(ctx context.Context) error
	state         State
	logger        *zap.Logger
}

// New creates a new saga instance
func New(name string, logger *zap.Logger) *Saga {
	return &Saga{
		name:   name,
		steps:  make([]Step, 0),
		state:  StatePending,
		logger: logger,
	}
}

// AddStep adds a step to the saga
func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the saga. On step failure the compensations of all completed
// steps run in reverse order and the step's error is returned, wrapped so
// callers can still unwrap it.
func (s *Saga) Execute(ctx context.Context, initialData interface{}) (interface{}, error) {
	s.state = StateRunning

	data := initialData
	completed := 0

	for _, step := range s.steps {
		step := step // per-iteration copy: required for the closure below under go < 1.22 loop semantics
		result, err := s.executeStepWithRetry(ctx, step, data)
		if err != nil {
			s.state = StateFailed
			s.logger.Debug("saga step failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			s.compensate(ctx, completed)
			return nil, fmt.Errorf("saga %s failed at step %s: %w", s.name, step.Name, err)
		}

		data = result
		completed++

		if step.Compensate != nil {
			stepData := data // capture for compensation
			s.compensations = append(s.compensations, func(ctx context.Context) error {
				return step.Compensate(ctx, stepData)
			})
		} else {
			s.compensations = append(s.compensations, nil)
		}
	}

	s.state = StateCompleted
	return data, nil
}

// executeStepWithRetry executes a step with retry logic
func (s *Saga) executeStepWithRetry(ctx context.Context, step Step, data interface{}) (interface{}, error) {
	attempts := step.MaxRetries
	if attempts == 0 {
		attempts = 1 // at least try once
	}

	delay := step.RetryDelay
	if delay == 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := step.Execute(ctx, data)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

// compensate runs compensation logic for the completed steps in reverse
// order. A failed compensation is logged and does not stop the others.
func (s *Saga) compensate(ctx context.Context, completed int) {
	if completed == 0 {
		return
	}
	s.state = StateCompensating

	for i := completed - 1; i >= 0; i-- {
		if i >= len(s.compensations) || s.compensations[i] == nil {
			continue
		}
		if err := s.compensations[i](ctx); err != nil {
			s.logger.Error("saga compensation failed",
				zap.String("saga", s.name),
				zap.String("step", s.steps[i].Name),
				zap.Error(err),
			)
		}
	}

	s.state = StateCompensated
}

// GetState returns the current state of the saga
func (s *Saga) GetState() State {
	return s.state
}
