package prompt

import (
	_ "embed"
	"strings"

	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/availability.txt
	availabilityRaw string

	//go:embed template/booking_book.txt
	bookingBookRaw string

	//go:embed template/booking_cancel.txt
	bookingCancelRaw string

	//go:embed template/booking_reschedule.txt
	bookingRescheduleRaw string

	//go:embed template/general.txt
	generalRaw string
)

// PromptSet holds the loaded system prompts.
type PromptSet struct {
	Classifier        string
	Availability      string
	BookingBook       string
	BookingCancel     string
	BookingReschedule string
	General           string
}

// LoadPromptSet returns the embedded prompts, trimmed. Safe to call
// concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier:        strings.TrimSpace(classifierRaw),
		Availability:      strings.TrimSpace(availabilityRaw),
		BookingBook:       strings.TrimSpace(bookingBookRaw),
		BookingCancel:     strings.TrimSpace(bookingCancelRaw),
		BookingReschedule: strings.TrimSpace(bookingRescheduleRaw),
		General:           strings.TrimSpace(generalRaw),
	}
}

// BookingVariant selects the booking system prompt for an intent. Intents
// outside the booking family get the plain booking prompt.
func (p PromptSet) BookingVariant(intent statex.Intent) string {
	switch intent {
	case statex.IntentCancelAppointment:
		return p.BookingCancel
	case statex.IntentReschedule:
		return p.BookingReschedule
	default:
		return p.BookingBook
	}
}
