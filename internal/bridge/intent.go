package bridge

import "go.uber.org/zap"

const (
	LaunchAppIntent = "LaunchAppIntent"
	AppNameSlot     = "appName"
)

// intentCommands maps a navigation intent to a remote keypress.
var intentCommands = map[string]string{
	"NavigateUpIntent":    "Up",
	"NavigateDownIntent":  "Down",
	"NavigateLeftIntent":  "Left",
	"NavigateRightIntent": "Right",
	"SelectIntent":        "Select",
	"BackIntent":          "Back",
	"HomeIntent":          "Home",
}

// IntentCommand derives the command for an intent. LaunchAppIntent forwards
// the appName slot verbatim.
func IntentCommand(in Intent) (string, error) {
	if in.Name == LaunchAppIntent {
		app, ok := in.Slot(AppNameSlot)
		if !ok {
			return "", missingSlot(AppNameSlot)
		}
		return app, nil
	}
	cmd, ok := intentCommands[in.Name]
	if !ok {
		return "", unsupportedIntent(in.Name)
	}
	return cmd, nil
}

// IntentTranslator handles requests of the Custom Interaction model.
type IntentTranslator struct {
	publisher Publisher
	log       *zap.Logger
}

func NewIntentTranslator(p Publisher, log *zap.Logger) *IntentTranslator {
	return &IntentTranslator{publisher: p, log: log.Named("intent")}
}

// Translate publishes the command for in and returns a single-turn speech response.
func (t *IntentTranslator) Translate(in Intent) (interface{}, error) {
	cmd, err := IntentCommand(in)
	if err != nil {
		return nil, err
	}
	t.log.Debug("Intent resolved", zap.String("intent", in.Name), zap.String("command", cmd))
	if err := t.publisher.Publish(CommandTopic, cmd); err != nil {
		return nil, err
	}
	return newSpeechResponse(cmd), nil
}
