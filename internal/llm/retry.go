package llm

import "time"

// Outcome classifies one attempt against a model endpoint.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeLoading is HTTP 503: the model is still being loaded.
	OutcomeLoading
	// OutcomeRateLimited is HTTP 429.
	OutcomeRateLimited
	OutcomeTimeout
	OutcomeFailure
)

const (
	defaultMaxAttempts = 3
	loadingBaseDelay   = 10 * time.Second
	loadingDelayStep   = 5 * time.Second
	timeoutDelay       = 5 * time.Second
)

// RetryState decides whether another attempt follows and how long to wait
// before it. Only loading replies and a single timeout are retried.
type RetryState struct {
	MaxAttempts int
	// Attempts counts recorded attempts.
	Attempts int

	timeoutRetried bool
	done           bool
}

// NewRetryState creates a state allowing maxAttempts attempts in total.
func NewRetryState(maxAttempts int) *RetryState {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryState{MaxAttempts: maxAttempts}
}

// Record registers the outcome of an attempt. It returns the delay before the
// next attempt and true, or false when the state is terminal.
func (s *RetryState) Record(o Outcome) (time.Duration, bool) {
	if s.done {
		return 0, false
	}
	s.Attempts++
	more := s.Attempts < s.MaxAttempts

	switch {
	case o == OutcomeLoading && more:
		return loadingBaseDelay + time.Duration(s.Attempts-1)*loadingDelayStep, true
	case o == OutcomeTimeout && more && !s.timeoutRetried:
		s.timeoutRetried = true
		return timeoutDelay, true
	}
	s.done = true
	return 0, false
}

// Done reports whether the state is terminal.
func (s *RetryState) Done() bool {
	return s.done
}
