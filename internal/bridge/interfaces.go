package bridge

// Broker defines the publishing capability the bridge needs from a message broker.
// Implemented by the MQTT client, the NATS queue and the circuit breaker wrapper.
type Broker interface {
	Publish(topic string, qos byte, payload []byte) error
}

// Publisher is what the translators use to send a command to the device.
type Publisher interface {
	Publish(topic, command string) error
}
