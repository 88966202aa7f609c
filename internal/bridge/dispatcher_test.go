package bridge

import (
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newTestDispatcher(t *testing.T, broker *fakeBroker) *Dispatcher {
	t.Helper()
	log := zaptest.NewLogger(t)
	return NewDispatcher(NewCommandClient(broker, log), log)
}

func TestHandle_TurnOnPublishesCommand(t *testing.T) {
	broker := &fakeBroker{}
	d := newTestDispatcher(t, broker)

	resp, err := d.Handle([]byte(`{"directive":{"header":{"namespace":"Alexa.PowerController","name":"TurnOn"}}}`))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if _, ok := resp.(SmartHomeResponse); !ok {
		t.Fatalf("expected SmartHomeResponse, got %T", resp)
	}
	if len(broker.calls) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(broker.calls))
	}
	call := broker.calls[0]
	if call.Topic != "iot/roku/control" {
		t.Errorf("topic = %q", call.Topic)
	}
	if call.QoS != 1 {
		t.Errorf("qos = %d, want 1", call.QoS)
	}
	if string(call.Payload) != `{"command":"PowerOn"}` {
		t.Errorf("payload = %s", call.Payload)
	}
}

func TestHandle_CustomIntent(t *testing.T) {
	broker := &fakeBroker{}
	d := newTestDispatcher(t, broker)

	body := `{"version":"1.0","request":{"type":"IntentRequest","intent":{"name":"LaunchAppIntent","slots":{"appName":{"name":"appName","value":"Netflix"}}}}}`
	resp, err := d.Handle([]byte(body))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if got := resp.(SpeechResponse).Response.OutputSpeech.Text; got != "Command 'Netflix' sent to your Roku TV." {
		t.Errorf("text = %q", got)
	}
	if len(broker.calls) != 1 || string(broker.calls[0].Payload) != `{"command":"Netflix"}` {
		t.Fatalf("unexpected publishes %+v", broker.calls)
	}
}

func TestHandle_UnfilledSlot(t *testing.T) {
	broker := &fakeBroker{}
	d := newTestDispatcher(t, broker)

	body := `{"request":{"intent":{"name":"LaunchAppIntent","slots":{"appName":{"name":"appName"}}}}}`
	resp, err := d.Handle([]byte(body))
	if !errors.Is(err, ErrMissingSlot) {
		t.Fatalf("expected ErrMissingSlot, got %v", err)
	}
	if env := resp.(ErrorEnvelope); env.ErrorType != "MISSING_SLOT" {
		t.Errorf("errorType = %q", env.ErrorType)
	}
	if len(broker.calls) != 0 {
		t.Error("expected no publish")
	}
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		sentinel error
		code     string
	}{
		{"empty object", `{}`, ErrUnsupportedShape, "INVALID_REQUEST_SHAPE"},
		{"other keys", `{"session":{}}`, ErrUnsupportedShape, "INVALID_REQUEST_SHAPE"},
		{"null body", `null`, ErrUnsupportedShape, "INVALID_REQUEST_SHAPE"},
		{"malformed json", `{"directive":`, ErrInternal, "INTERNAL_ERROR"},
		{"array body", `[]`, ErrInternal, "INTERNAL_ERROR"},
		{"missing header", `{"directive":{}}`, ErrInternal, "INTERNAL_ERROR"},
		{"null directive", `{"directive":null}`, ErrInternal, "INTERNAL_ERROR"},
		{"missing name", `{"directive":{"header":{"namespace":"Alexa.PowerController"}}}`, ErrInternal, "INTERNAL_ERROR"},
		{"launch request", `{"request":{"type":"LaunchRequest"}}`, ErrInternal, "INTERNAL_ERROR"},
		{"unknown namespace", `{"directive":{"header":{"namespace":"Alexa.ChannelController","name":"ChangeChannel"}}}`, ErrUnsupportedDirective, "INVALID_DIRECTIVE"},
		{"unknown intent", `{"request":{"intent":{"name":"AMAZON.StopIntent"}}}`, ErrUnsupportedIntent, "INVALID_INTENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker := &fakeBroker{}
			d := newTestDispatcher(t, broker)

			resp, err := d.Handle([]byte(tt.body))
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			env, ok := resp.(ErrorEnvelope)
			if !ok {
				t.Fatalf("expected ErrorEnvelope, got %T", resp)
			}
			if env.ErrorType != tt.code {
				t.Errorf("errorType = %q, want %q", env.ErrorType, tt.code)
			}
			if env.Message == "" {
				t.Error("expected a message")
			}
			if len(broker.calls) != 0 {
				t.Errorf("expected no publish, got %d", len(broker.calls))
			}
		})
	}
}

func TestHandle_BrokerFailure(t *testing.T) {
	bodies := []string{
		`{"directive":{"header":{"namespace":"Alexa.StepSpeaker","name":"VolumeUp"}}}`,
		`{"request":{"intent":{"name":"HomeIntent"}}}`,
	}
	for _, body := range bodies {
		broker := &fakeBroker{err: errConnRefused}
		d := newTestDispatcher(t, broker)

		resp, err := d.Handle([]byte(body))
		if !errors.Is(err, ErrBrokerUnavailable) {
			t.Fatalf("expected ErrBrokerUnavailable, got %v", err)
		}
		env, ok := resp.(ErrorEnvelope)
		if !ok {
			t.Fatalf("expected ErrorEnvelope, got %T", resp)
		}
		if env.ErrorType != "BROKER_UNAVAILABLE" {
			t.Errorf("errorType = %q", env.ErrorType)
		}
		if len(broker.calls) != 1 {
			t.Errorf("expected exactly one publish attempt, got %d", len(broker.calls))
		}
	}
}

func TestHandle_DiscoveryDoesNotPublish(t *testing.T) {
	broker := &fakeBroker{}
	d := newTestDispatcher(t, broker)

	resp, err := d.Handle([]byte(`{"directive":{"header":{"namespace":"Alexa.Discovery","name":"Discover","payloadVersion":"3"},"payload":{"scope":{"type":"BearerToken","token":"x"}}}}`))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if len(broker.calls) != 0 {
		t.Fatal("discovery must not publish")
	}

	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire struct {
		Event struct {
			Header struct {
				Namespace      string `json:"namespace"`
				PayloadVersion string `json:"payloadVersion"`
			} `json:"header"`
			Payload struct {
				Endpoints []struct {
					EndpointID   string            `json:"endpointId"`
					Capabilities []json.RawMessage `json:"capabilities"`
				} `json:"endpoints"`
			} `json:"payload"`
		} `json:"event"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wire.Event.Header.Namespace != "Alexa.Discovery" || wire.Event.Header.PayloadVersion != "3" {
		t.Errorf("unexpected header %+v", wire.Event.Header)
	}
	if len(wire.Event.Payload.Endpoints) != 1 || wire.Event.Payload.Endpoints[0].EndpointID != "roku_tv" {
		t.Fatalf("unexpected endpoints %+v", wire.Event.Payload.Endpoints)
	}
	if n := len(wire.Event.Payload.Endpoints[0].Capabilities); n != 3 {
		t.Errorf("expected 3 capabilities, got %d", n)
	}
}

func TestHandle_EmptySlotValueForwarded(t *testing.T) {
	broker := &fakeBroker{}
	d := newTestDispatcher(t, broker)

	body := `{"request":{"intent":{"name":"LaunchAppIntent","slots":{"appName":{"name":"appName","value":""}}}}}`
	if _, err := d.Handle([]byte(body)); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if len(broker.calls) != 1 || string(broker.calls[0].Payload) != `{"command":""}` {
		t.Fatalf("unexpected publishes %+v", broker.calls)
	}
}

func TestHandle_DiscoveryWithoutName(t *testing.T) {
	broker := &fakeBroker{}
	d := newTestDispatcher(t, broker)

	resp, err := d.Handle([]byte(`{"directive":{"header":{"namespace":"Alexa.Discovery"}}}`))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if _, ok := resp.(DiscoveryResponse); !ok {
		t.Fatalf("expected DiscoveryResponse, got %T", resp)
	}
	if len(broker.calls) != 0 {
		t.Fatal("discovery must not publish")
	}
}

func TestHandle_AckWireShape(t *testing.T) {
	d := newTestDispatcher(t, &fakeBroker{})

	resp, err := d.Handle([]byte(`{"directive":{"header":{"namespace":"Alexa.PlaybackController","name":"Pause","correlationToken":"abc"},"endpoint":{"endpointId":"roku_tv"},"payload":{}}}`))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	b, _ := json.Marshal(resp)

	var wire map[string]map[string]interface{}
	if err := json.Unmarshal(b, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ctx, ok := wire["context"]; !ok || len(ctx) != 0 {
		t.Errorf("expected empty context object, got %v", wire["context"])
	}
	header := wire["event"]["header"].(map[string]interface{})
	if header["correlationToken"] != "abc" {
		t.Errorf("correlationToken = %v", header["correlationToken"])
	}
	if payload := wire["event"]["payload"].(map[string]interface{}); len(payload) != 0 {
		t.Errorf("expected empty payload, got %v", payload)
	}
}

func TestCommandClient_WrapsTransportError(t *testing.T) {
	log := zaptest.NewLogger(t)
	c := NewCommandClient(&fakeBroker{err: errConnRefused}, log)

	err := c.Publish(CommandTopic, "PowerOff")
	if !errors.Is(err, ErrBrokerUnavailable) || !errors.Is(err, errConnRefused) {
		t.Fatalf("expected BrokerUnavailable wrapping the cause, got %v", err)
	}
	if KindOf(err) != KindBrokerUnavailable {
		t.Errorf("KindOf = %v", KindOf(err))
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Error("foreign errors should classify as internal")
	}
	if got := NewErrorEnvelope(errors.New("boom")); got.ErrorType != "INTERNAL_ERROR" || got.Message != "boom" {
		t.Errorf("unexpected envelope %+v", got)
	}
}
