package llm

import (
	"testing"
	"time"
)

func TestRetryState(t *testing.T) {
	type step struct {
		outcome   Outcome
		wantDelay time.Duration
		wantRetry bool
	}
	tests := []struct {
		name  string
		steps []step
	}{
		{"loading three times", []step{
			{OutcomeLoading, 10 * time.Second, true},
			{OutcomeLoading, 15 * time.Second, true},
			{OutcomeLoading, 0, false},
		}},
		{"rate limited", []step{
			{OutcomeRateLimited, 0, false},
		}},
		{"timeout once", []step{
			{OutcomeTimeout, 5 * time.Second, true},
			{OutcomeTimeout, 0, false},
		}},
		{"loading then timeout then loading", []step{
			{OutcomeLoading, 10 * time.Second, true},
			{OutcomeTimeout, 5 * time.Second, true},
			{OutcomeLoading, 0, false},
		}},
		{"failure", []step{
			{OutcomeFailure, 0, false},
		}},
		{"success", []step{
			{OutcomeSuccess, 0, false},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRetryState(3)
			for i, st := range tt.steps {
				delay, retry := s.Record(st.outcome)
				if delay != st.wantDelay || retry != st.wantRetry {
					t.Errorf("step %d: Record() = (%v, %v), want (%v, %v)", i, delay, retry, st.wantDelay, st.wantRetry)
				}
			}
			if !s.Done() {
				t.Error("state should be terminal")
			}
			if _, retry := s.Record(OutcomeLoading); retry {
				t.Error("terminal state must not retry")
			}
		})
	}
}

func TestRetryStateSingleAttempt(t *testing.T) {
	s := NewRetryState(0)
	if _, retry := s.Record(OutcomeLoading); retry {
		t.Error("a single-attempt state must not retry")
	}
}
