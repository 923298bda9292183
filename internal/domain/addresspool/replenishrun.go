package addresspool

import "time"

// ReplenishRun is the outcome of the most recent replenishment pass. Error is
// empty when the pass succeeded; ConsecutiveFailures resets on success.
type ReplenishRun struct {
	At                  time.Time
	Generated           int
	Error               string
	ConsecutiveFailures int
}

func (r *ReplenishRun) Failed() bool { return r.Error != "" }
