// Package bot implements the conversation session engine for the MedPet
// chatbot: event classification, the appointment and assistant flows, and the
// menu router.
//
// This file holds the fixed content the core owns: greeting phrases, the
// media catalog, step prompts, menus, and the static location and contact
// payloads. All of it is configuration, not computed.
package bot

import (
	"fmt"

	"github.com/medpet/chatbot/internal/models"
)

// greetingPhrases trigger the welcome branch. Matching is case-insensitive
// substring containment on the trimmed body.
var greetingPhrases = []string{"hola", "hello", "hi", "buenos días", "buenas tardes"}

// mediaCatalog maps exact media keywords to their static assets.
var mediaCatalog = map[string]models.MediaAsset{
	"audio": {
		Kind:    models.MediaKindAudio,
		URL:     "https://s3.amazonaws.com/gndx.dev/medpet-audio.aac",
		Caption: "Bienvenida",
	},
	"imagen": {
		Kind:    models.MediaKindImage,
		URL:     "https://s3.amazonaws.com/gndx.dev/medpet-imagen.png",
		Caption: "Imagen",
	},
	"video": {
		Kind:    models.MediaKindVideo,
		URL:     "https://s3.amazonaws.com/gndx.dev/medpet-video.mp4",
		Caption: "Video",
	},
	"pdf": {
		Kind:     models.MediaKindDocument,
		URL:      "https://s3.amazonaws.com/gndx.dev/medpet-file.pdf",
		Caption:  "PDF",
		Filename: "medpet.pdf",
	},
}

// Menu option identifiers.
const (
	OptionAppointment  = "option_1"
	OptionAssistant    = "option_2"
	OptionLocation     = "option_3"
	OptionHelpful      = "option_4"
	OptionAnotherQuery = "option_5"
	OptionEmergency    = "option_6"
)

// Conversation texts.
const (
	menuPrompt     = "Elige una opción:"
	namePrompt     = "Por favor, ingresa tu nombre:"
	petNamePrompt  = "Gracias, ahora, ¿Cuál es el nombre de tu mascota?"
	petTypePrompt  = "¿Qué tipo de mascota es? (Ej: Perro, gato, hurón)"
	reasonPrompt   = "¿Cuál es el motivo de la consulta?"
	questionPrompt = "Realiza tu consulta"
	locationText   = "Te esperamos en nuestra sucursal"
	emergencyText  = "Si esto es una emergencia, te invitamos a llamar a nuestra línea de atención"
	fallbackText   = "Lo siento, no entendí tu selección. Por favor, elige una de las opciones del menú"
	feedbackPrompt = "¿La respuesta fue de ayuda?"
)

// welcomeText builds the personalized greeting.
func welcomeText(name string) string {
	return fmt.Sprintf("Hola %s, Bienvenido a MEDPET, tu tienda de mascotas en línea. ¿En qué puedo ayudarte hoy?", name)
}

// summaryText renders the appointment confirmation with all collected fields.
func summaryText(record models.AppointmentRecord) string {
	return fmt.Sprintf("Gracias, por agendar tu cita.\n"+
		"Resumen de tu cita:\n\n"+
		"Nombre: %s\n"+
		"Nombre de la mascota: %s\n"+
		"Tipo de mascota: %s\n"+
		"Motivo: %s\n\n"+
		"Nos pondremos en contacto contigo pronto, para confirmar la fecha y hora de tu cita.",
		record.Name, record.PetName, record.PetType, record.Reason)
}

// welcomeMenuButtons is the top-level menu presented after a greeting.
var welcomeMenuButtons = []models.Button{
	{ID: OptionAppointment, Title: "Agendar"},
	{ID: OptionAssistant, Title: "Consultar"},
	{ID: OptionLocation, Title: "Ubicación"},
}

// feedbackButtons follow every assistant answer.
var feedbackButtons = []models.Button{
	{ID: OptionHelpful, Title: "Sí, gracias"},
	{ID: OptionAnotherQuery, Title: "Hacer otra pregunta"},
	{ID: OptionEmergency, Title: "Emergencia"},
}

// branchLocation is the clinic location sent for the location option.
var branchLocation = models.Location{
	Latitude:  6.2071694,
	Longitude: -75.574607,
	Name:      "Platzi Medellín",
	Address:   "Cra. 43A #5A - 113, El Poblado Medellín, Antioquia",
}

// emergencyContact is the contact card sent for the emergency option.
var emergencyContact = models.ContactCard{
	Addresses: []models.ContactAddress{{
		Street:      "123 Calle de las Mascotas",
		City:        "Ciudad",
		State:       "Estado",
		Zip:         "12345",
		Country:     "País",
		CountryCode: "PA",
		Type:        "WORK",
	}},
	Emails: []models.ContactEmail{{Email: "contacto@medpet.com", Type: "WORK"}},
	Name: models.ContactName{
		FormattedName: "MedPet Contacto",
		FirstName:     "MedPet",
		LastName:      "Contacto",
	},
	Org: models.ContactOrg{
		Company:    "MedPet",
		Department: "Atención al Cliente",
		Title:      "Representante",
	},
	Phones: []models.ContactPhone{{Phone: "+1234567890", WaID: "1234567890", Type: "WORK"}},
	URLs:   []models.ContactURL{{URL: "https://www.medpet.com", Type: "WORK"}},
}
