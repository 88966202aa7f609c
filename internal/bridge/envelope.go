package bridge

import "fmt"

// Response envelopes returned to the voice platform.

type Header struct {
	Namespace        string `json:"namespace"`
	Name             string `json:"name"`
	MessageID        string `json:"messageId"`
	CorrelationToken string `json:"correlationToken,omitempty"`
	PayloadVersion   string `json:"payloadVersion"`
}

type Capability struct {
	Type      string `json:"type"`
	Interface string `json:"interface"`
	Version   string `json:"version"`
}

type EndpointDescriptor struct {
	EndpointID        string       `json:"endpointId"`
	ManufacturerName  string       `json:"manufacturerName"`
	FriendlyName      string       `json:"friendlyName"`
	Description       string       `json:"description"`
	DisplayCategories []string     `json:"displayCategories"`
	Capabilities      []Capability `json:"capabilities"`
}

type DiscoveryPayload struct {
	Endpoints []EndpointDescriptor `json:"endpoints"`
}

type DiscoveryEvent struct {
	Header  Header           `json:"header"`
	Payload DiscoveryPayload `json:"payload"`
}

// DiscoveryResponse answers an Alexa.Discovery directive.
type DiscoveryResponse struct {
	Event DiscoveryEvent `json:"event"`
}

type EndpointRef struct {
	EndpointID string `json:"endpointId"`
}

type SmartHomeEvent struct {
	Header   Header                 `json:"header"`
	Endpoint EndpointRef            `json:"endpoint"`
	Payload  map[string]interface{} `json:"payload"`
}

// SmartHomeResponse is the generic acknowledgement for a controller directive.
type SmartHomeResponse struct {
	Context map[string]interface{} `json:"context"`
	Event   SmartHomeEvent         `json:"event"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type SpeechBody struct {
	OutputSpeech     OutputSpeech `json:"outputSpeech"`
	ShouldEndSession bool         `json:"shouldEndSession"`
}

// SpeechResponse answers a Custom Interaction intent.
type SpeechResponse struct {
	Version  string     `json:"version"`
	Response SpeechBody `json:"response"`
}

// ErrorEnvelope is returned for every failed request.
type ErrorEnvelope struct {
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
}

func newSpeechResponse(command string) SpeechResponse {
	return SpeechResponse{
		Version: "1.0",
		Response: SpeechBody{
			OutputSpeech: OutputSpeech{
				Type: "PlainText",
				Text: fmt.Sprintf("Command '%s' sent to your Roku TV.", command),
			},
			ShouldEndSession: true,
		},
	}
}

// NewErrorEnvelope converts any error into the envelope sent back to the caller.
func NewErrorEnvelope(err error) ErrorEnvelope {
	return ErrorEnvelope{
		ErrorType: KindOf(err).Code(),
		Message:   err.Error(),
	}
}
