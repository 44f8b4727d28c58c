package schedule

// The clinic roster. Tool schemas and prompts reference these exact
// lowercase names.
var Doctors = []string{
	"kevin anderson",
	"robert martinez",
	"susan davis",
	"daniel miller",
	"sarah wilson",
	"michael green",
	"lisa brown",
	"jane smith",
	"emily johnson",
	"john doe",
}

var Specializations = []string{
	"general_dentist",
	"cosmetic_dentist",
	"prosthodontist",
	"pediatric_dentist",
	"emergency_dentist",
	"oral_surgeon",
	"orthodontist",
}

var doctorSpecialization = map[string]string{
	"kevin anderson": "general_dentist",
	"robert martinez": "cosmetic_dentist",
	"susan davis":    "prosthodontist",
	"daniel miller":  "pediatric_dentist",
	"sarah wilson":   "emergency_dentist",
	"michael green":  "oral_surgeon",
	"lisa brown":     "orthodontist",
	"jane smith":     "general_dentist",
	"emily johnson":  "cosmetic_dentist",
	"john doe":       "general_dentist",
}

// IsKnownDoctor reports whether name matches the roster (case-insensitive
// match is the caller's concern; names here are canonical lowercase).
func IsKnownDoctor(name string) bool {
	_, ok := doctorSpecialization[name]
	return ok
}

func IsKnownSpecialization(spec string) bool {
	for _, s := range Specializations {
		if s == spec {
			return true
		}
	}
	return false
}

// SeedSlots builds a demo slot table: every roster doctor gets half-hour
// slots from 08:00 to 11:30 on each given date.
func SeedSlots(dates []string) []Slot {
	times := []string{"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}

	var slots []Slot
	for _, date := range dates {
		for _, doctor := range Doctors {
			for _, t := range times {
				slots = append(slots, Slot{
					Date:           date,
					Time:           t,
					Doctor:         doctor,
					Specialization: doctorSpecialization[doctor],
					Available:      true,
				})
			}
		}
	}
	return slots
}
