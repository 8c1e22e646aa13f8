package bot

import (
	"time"

	"github.com/medpet/chatbot/internal/models"
)

// advanceAppointment consumes one text message for an active appointment
// session. The raw input is stored into the field named by the current step,
// the step advances, and the reply prompts for the new step. On the reason
// step the completed record is returned and the next state clears the
// session; the caller hands the record to the recorder and the summary is the
// final reply. Input is accepted as-is, empty included.
func advanceAppointment(userID string, state models.SessionState, input, replyTo string, now time.Time) (stepResult, *models.AppointmentRecord) {
	switch state.Step {
	case models.StepName:
		state.Name = input
		state.Step = models.StepPetName
		return stepResult{actions: []Action{textAction(petNamePrompt, replyTo)}, next: state}, nil
	case models.StepPetName:
		state.PetName = input
		state.Step = models.StepPetType
		return stepResult{actions: []Action{textAction(petTypePrompt, replyTo)}, next: state}, nil
	case models.StepPetType:
		state.PetType = input
		state.Step = models.StepReason
		return stepResult{actions: []Action{textAction(reasonPrompt, replyTo)}, next: state}, nil
	case models.StepReason:
		state.Reason = input
		record := models.AppointmentRecord{
			UserID:    userID,
			Name:      state.Name,
			PetName:   state.PetName,
			PetType:   state.PetType,
			Reason:    state.Reason,
			CreatedAt: now,
		}
		return stepResult{actions: []Action{textAction(summaryText(record), replyTo)}}, &record
	}
	// Unknown step: restart at the beginning rather than wedging the session.
	return stepResult{actions: []Action{textAction(namePrompt, replyTo)}, next: models.NewAppointmentSession()}, nil
}
