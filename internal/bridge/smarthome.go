package bridge

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// EndpointID is the single device the skill exposes.
	EndpointID = "roku_tv"

	NamespaceDiscovery = "Alexa.Discovery"
	payloadVersion     = "3"
)

type directiveKey struct {
	Namespace string
	Name      string
}

// smartHomeCommands maps (namespace, name) to the command sent to the device.
var smartHomeCommands = map[directiveKey]string{
	{"Alexa.PowerController", "TurnOn"}:   "PowerOn",
	{"Alexa.PowerController", "TurnOff"}:  "PowerOff",
	{"Alexa.StepSpeaker", "VolumeUp"}:     "volume up",
	{"Alexa.StepSpeaker", "VolumeDown"}:   "volume down",
	{"Alexa.PlaybackController", "Play"}:  "keypress play",
	{"Alexa.PlaybackController", "Pause"}: "keypress pause",
	{"Alexa.PlaybackController", "Stop"}:  "keypress stop",
}

// SmartHomeCommand looks up the command for a controller directive.
func SmartHomeCommand(namespace, name string) (string, error) {
	cmd, ok := smartHomeCommands[directiveKey{namespace, name}]
	if !ok {
		return "", unsupportedDirective(namespace, name)
	}
	return cmd, nil
}

// discoveryEndpoint describes the Roku TV and its interfaces.
var discoveryEndpoint = EndpointDescriptor{
	EndpointID:        EndpointID,
	ManufacturerName:  "Roku",
	FriendlyName:      "Roku TV",
	Description:       "Smart Roku TV",
	DisplayCategories: []string{"TV"},
	Capabilities: []Capability{
		{Type: "AlexaInterface", Interface: "Alexa.PowerController", Version: "3"},
		{Type: "AlexaInterface", Interface: "Alexa.StepSpeaker", Version: "1"},
		{Type: "AlexaInterface", Interface: "Alexa.PlaybackController", Version: "1"},
	},
}

// SmartHomeTranslator handles directives of the Smart Home model.
type SmartHomeTranslator struct {
	publisher Publisher
	newID     func() string
	log       *zap.Logger
}

func NewSmartHomeTranslator(p Publisher, log *zap.Logger) *SmartHomeTranslator {
	return &SmartHomeTranslator{
		publisher: p,
		newID:     uuid.NewString,
		log:       log.Named("smarthome"),
	}
}

// Translate publishes the command for d and returns the response envelope.
// Discovery is answered directly and never publishes.
func (t *SmartHomeTranslator) Translate(d Directive) (interface{}, error) {
	if d.Namespace == NamespaceDiscovery {
		t.log.Info("Handling discovery")
		return t.discoveryResponse(), nil
	}

	cmd, err := SmartHomeCommand(d.Namespace, d.Name)
	if err != nil {
		return nil, err
	}
	if err := t.publisher.Publish(CommandTopic, cmd); err != nil {
		return nil, err
	}
	return t.ackResponse(d), nil
}

func (t *SmartHomeTranslator) discoveryResponse() DiscoveryResponse {
	ep := discoveryEndpoint
	ep.DisplayCategories = append([]string(nil), discoveryEndpoint.DisplayCategories...)
	ep.Capabilities = append([]Capability(nil), discoveryEndpoint.Capabilities...)
	return DiscoveryResponse{
		Event: DiscoveryEvent{
			Header: Header{
				Namespace:      NamespaceDiscovery,
				Name:           "Discover.Response",
				MessageID:      t.newID(),
				PayloadVersion: payloadVersion,
			},
			Payload: DiscoveryPayload{Endpoints: []EndpointDescriptor{ep}},
		},
	}
}

func (t *SmartHomeTranslator) ackResponse(d Directive) SmartHomeResponse {
	return SmartHomeResponse{
		Context: map[string]interface{}{},
		Event: SmartHomeEvent{
			Header: Header{
				Namespace:        "Alexa",
				Name:             "Response",
				MessageID:        t.newID(),
				CorrelationToken: d.CorrelationToken,
				PayloadVersion:   payloadVersion,
			},
			Endpoint: EndpointRef{EndpointID: EndpointID},
			Payload:  map[string]interface{}{},
		},
	}
}
