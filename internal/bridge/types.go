package bridge

import "encoding/json"

// Directive is a Smart Home instruction, built from one inbound request.
type Directive struct {
	Namespace        string
	Name             string
	CorrelationToken string
	EndpointID       string
	Payload          json.RawMessage
}

// Intent is a Custom Interaction instruction with optional slot values.
type Intent struct {
	Name  string
	Slots map[string]string
}

// Slot returns the value of a named slot and whether it carried a value.
// An empty value counts as filled.
func (i Intent) Slot(name string) (string, bool) {
	v, ok := i.Slots[name]
	return v, ok
}

// --- Wire shapes of the two inbound request models ---

type directiveWire struct {
	Header *struct {
		Namespace        string `json:"namespace"`
		Name             string `json:"name"`
		PayloadVersion   string `json:"payloadVersion"`
		MessageID        string `json:"messageId"`
		CorrelationToken string `json:"correlationToken"`
	} `json:"header"`
	Endpoint *struct {
		EndpointID string `json:"endpointId"`
	} `json:"endpoint"`
	Payload json.RawMessage `json:"payload"`
}

type requestWire struct {
	Type   string `json:"type"`
	Intent *struct {
		Name  string `json:"name"`
		Slots map[string]struct {
			Name  string  `json:"name"`
			Value *string `json:"value"`
		} `json:"slots"`
	} `json:"intent"`
}

// parseDirective builds a Directive from the raw "directive" object.
func parseDirective(raw json.RawMessage) (Directive, error) {
	var w directiveWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Directive{}, internalError("failed to decode directive: %w", err)
	}
	if w.Header == nil {
		return Directive{}, internalError("directive.header is missing")
	}
	if w.Header.Namespace == "" {
		return Directive{}, internalError("directive.header.namespace is missing")
	}
	// discovery answers for any name, including none
	if w.Header.Name == "" && w.Header.Namespace != NamespaceDiscovery {
		return Directive{}, internalError("directive.header.name is missing")
	}
	d := Directive{
		Namespace:        w.Header.Namespace,
		Name:             w.Header.Name,
		CorrelationToken: w.Header.CorrelationToken,
		Payload:          w.Payload,
	}
	if w.Endpoint != nil {
		d.EndpointID = w.Endpoint.EndpointID
	}
	return d, nil
}

// parseIntent builds an Intent from the raw "request" object.
func parseIntent(raw json.RawMessage) (Intent, error) {
	var w requestWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Intent{}, internalError("failed to decode request: %w", err)
	}
	if w.Intent == nil {
		return Intent{}, internalError("request.intent is missing (request type %q)", w.Type)
	}
	if w.Intent.Name == "" {
		return Intent{}, internalError("request.intent.name is missing")
	}
	in := Intent{Name: w.Intent.Name}
	if len(w.Intent.Slots) > 0 {
		in.Slots = make(map[string]string, len(w.Intent.Slots))
		for name, s := range w.Intent.Slots {
			if s.Value != nil {
				in.Slots[name] = *s.Value
			}
		}
	}
	return in, nil
}
