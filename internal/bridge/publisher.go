package bridge

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/farouk15160/roku-voice-bridge/internal/telemetry"
)

const (
	// CommandTopic is the topic the Roku controller subscribes to.
	CommandTopic = "iot/roku/control"
	// CommandQoS requests at-least-once delivery from the broker.
	CommandQoS byte = 1
)

// commandPayload is the wire format the device expects.
type commandPayload struct {
	Command string `json:"command"`
}

// CommandClient serialises commands and hands them to the broker.
type CommandClient struct {
	broker Broker
	log    *zap.Logger
}

func NewCommandClient(broker Broker, log *zap.Logger) *CommandClient {
	return &CommandClient{broker: broker, log: log.Named("publisher")}
}

// Publish sends one command. A transport failure comes back as a BrokerUnavailable error.
func (c *CommandClient) Publish(topic, command string) error {
	payload, err := json.Marshal(commandPayload{Command: command})
	if err != nil {
		return internalError("failed to encode command %q: %w", command, err)
	}

	c.log.Info("Publishing command",
		zap.String("topic", topic),
		zap.String("command", command))

	start := time.Now()
	err = c.broker.Publish(topic, CommandQoS, payload)
	telemetry.PublishLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.PublishesTotal.WithLabelValues("error").Inc()
		c.log.Error("Failed to publish command",
			zap.String("topic", topic),
			zap.String("command", command),
			zap.Error(err))
		return brokerUnavailable(err)
	}
	telemetry.PublishesTotal.WithLabelValues("ok").Inc()
	return nil
}
