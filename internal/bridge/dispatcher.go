package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/farouk15160/roku-voice-bridge/internal/telemetry"
)

// Request models, as reported in logs and metrics.
const (
	ModelSmartHome = "smart_home"
	ModelCustom    = "custom"
	ModelUnknown   = "unknown"
)

// Dispatcher is the single entry point for inbound voice requests.
type Dispatcher struct {
	smartHome *SmartHomeTranslator
	intents   *IntentTranslator
	log       *zap.Logger
}

// NewDispatcher wires both translators to the same publisher.
func NewDispatcher(p Publisher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		smartHome: NewSmartHomeTranslator(p, log),
		intents:   NewIntentTranslator(p, log),
		log:       log.Named("dispatcher"),
	}
}

// Handle routes one raw request to its translator. It always returns an
// envelope to send back; on failure that is an ErrorEnvelope and err is the
// typed *Error describing what went wrong.
func (d *Dispatcher) Handle(body []byte) (resp interface{}, err error) {
	start := time.Now()
	model := ModelUnknown

	defer func() {
		if r := recover(); r != nil {
			err = internalError("panic while handling request: %v", r)
		}
		if err != nil {
			var be *Error
			if !errors.As(err, &be) {
				err = &Error{Kind: KindInternal, Err: err}
			}
			d.log.Error("Error handling request",
				zap.String("model", model),
				zap.String("errorType", KindOf(err).Code()),
				zap.Error(err))
			resp = NewErrorEnvelope(err)
			telemetry.RequestsTotal.WithLabelValues(model, KindOf(err).String()).Inc()
		} else {
			telemetry.RequestsTotal.WithLabelValues(model, "ok").Inc()
		}
		telemetry.RequestLatency.WithLabelValues(model).Observe(time.Since(start).Seconds())
	}()

	d.log.Info("Event received", zap.ByteString("event", truncate(body, 1024)))

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, internalError("failed to decode request body: %w", err)
	}

	if raw, ok := top["directive"]; ok {
		model = ModelSmartHome
		directive, err := parseDirective(raw)
		if err != nil {
			return nil, err
		}
		return d.smartHome.Translate(directive)
	}
	if raw, ok := top["request"]; ok {
		model = ModelCustom
		intent, err := parseIntent(raw)
		if err != nil {
			return nil, err
		}
		return d.intents.Translate(intent)
	}
	return nil, &Error{Kind: KindUnsupportedShape}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return []byte(fmt.Sprintf("%s...", b[:n]))
}
