package bridge

import "errors"

type publishCall struct {
	Topic   string
	Command string
}

// fakePublisher records commands instead of sending them.
type fakePublisher struct {
	calls []publishCall
	err   error
}

func (f *fakePublisher) Publish(topic, command string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, publishCall{Topic: topic, Command: command})
	return nil
}

type brokerCall struct {
	Topic   string
	QoS     byte
	Payload []byte
}

// fakeBroker stands in for the MQTT client.
type fakeBroker struct {
	calls []brokerCall
	err   error
}

func (f *fakeBroker) Publish(topic string, qos byte, payload []byte) error {
	f.calls = append(f.calls, brokerCall{Topic: topic, QoS: qos, Payload: payload})
	return f.err
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:8883: connect: connection refused")
