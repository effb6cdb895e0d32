package signal

import "golang.org/x/time/rate"

// EventLimiter hands out one token bucket per connection.
type EventLimiter struct {
	limit rate.Limit
	burst int
}

// NewEventLimiter allows perSecond events with the given burst. A
// non-positive rate disables limiting.
func NewEventLimiter(perSecond float64, burst int) *EventLimiter {
	if perSecond <= 0 {
		return &EventLimiter{limit: rate.Inf}
	}
	if burst < 1 {
		burst = 1
	}
	return &EventLimiter{limit: rate.Limit(perSecond), burst: burst}
}

func (l *EventLimiter) ForConn() *rate.Limiter {
	return rate.NewLimiter(l.limit, l.burst)
}
