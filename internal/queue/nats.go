package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// natsConn is the part of *nats.Conn the broker uses.
type natsConn interface {
	Publish(subj string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSBroker publishes commands on a NATS subject instead of an MQTT topic.
// MQTT-style topics are mapped to subjects by replacing '/' with '.'.
type NATSBroker struct {
	conn    natsConn
	timeout time.Duration
	log     *zap.Logger
}

func NewNATSBroker(url string, timeout time.Duration, log *zap.Logger) (*NATSBroker, error) {
	nc, err := nats.Connect(url,
		nats.Name("roku-bridge"),
		nats.Timeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Successfully connected to NATS", zap.String("url", url))
	return &NATSBroker{
		conn:    nc,
		timeout: timeout,
		log:     log.Named("nats"),
	}, nil
}

// Publish sends payload to the subject derived from topic. For qos > 0 it
// flushes and waits for the server to confirm it processed the message.
func (q *NATSBroker) Publish(topic string, qos byte, payload []byte) error {
	subject := Subject(topic)
	if err := q.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	if qos == 0 {
		return nil
	}
	if err := q.conn.FlushTimeout(q.timeout); err != nil {
		return fmt.Errorf("flush after publish to %s: %w", subject, err)
	}
	return nil
}

func (q *NATSBroker) Close() error {
	q.conn.Close()
	return nil
}

// Subject converts an MQTT topic to a NATS subject.
func Subject(topic string) string {
	return strings.ReplaceAll(topic, "/", ".")
}
