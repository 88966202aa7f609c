package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Broker is the publish call being guarded.
type Broker interface {
	Publish(topic string, qos byte, payload []byte) error
}

// Settings configures the breaker.
type Settings struct {
	Name             string
	MaxRequests      uint32        // allowed through while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open-state duration before half-open
	FailureThreshold uint32        // consecutive failures that open the circuit
}

// GuardedBroker fails fast while the broker is known to be down. It never
// retries: a rejected call surfaces as an error immediately.
type GuardedBroker struct {
	next Broker
	cb   *gobreaker.CircuitBreaker
}

func NewGuardedBroker(next Broker, s Settings, log *zap.Logger) *GuardedBroker {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	threshold := s.FailureThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &GuardedBroker{next: next, cb: cb}
}

func (g *GuardedBroker) Publish(topic string, qos byte, payload []byte) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.next.Publish(topic, qos, payload)
	})
	return err
}

// State reports the current breaker state, e.g. for health checks.
func (g *GuardedBroker) State() gobreaker.State {
	return g.cb.State()
}
