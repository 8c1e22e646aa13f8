package bot

import "github.com/medpet/chatbot/internal/models"

// routeMenuOption maps a menu option id to its actions and resulting session
// state. The router only ever creates sessions for the appointment and
// assistant options; re-selecting one while its flow is active silently
// restarts it, discarding prior progress. Every other option leaves the
// current state untouched.
func routeMenuOption(option, replyTo string, current models.SessionState) stepResult {
	switch option {
	case OptionAppointment:
		return stepResult{
			actions: []Action{textAction(namePrompt, replyTo)},
			next:    models.NewAppointmentSession(),
		}
	case OptionAssistant:
		return stepResult{
			actions: []Action{textAction(questionPrompt, replyTo)},
			next:    models.NewAssistantSession(),
		}
	case OptionLocation:
		return stepResult{
			actions: []Action{
				{Kind: ActionLocation, Location: branchLocation},
				textAction(locationText, replyTo),
			},
			next: current,
		}
	case OptionEmergency:
		return stepResult{
			actions: []Action{
				{Kind: ActionContact, Contact: emergencyContact},
				textAction(emergencyText, replyTo),
			},
			next: current,
		}
	default:
		return stepResult{
			actions: []Action{textAction(fallbackText, replyTo)},
			next:    current,
		}
	}
}
