package tool

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ValidateDate checks the DD-MM-YYYY wire format and that the value is a
// real calendar date. Store calls must never see an unvalidated date.
func ValidateDate(date string) error {
	if !datePattern.MatchString(date) {
		return fmt.Errorf("date must be in format DD-MM-YYYY")
	}
	if _, err := time.Parse("02-01-2006", date); err != nil {
		return fmt.Errorf("date %q is not a valid calendar date", date)
	}
	return nil
}

// ValidateTime checks the 24-hour HH:MM wire format.
func ValidateTime(value string) error {
	if !timePattern.MatchString(value) {
		return fmt.Errorf("time must be in 24-hour format HH:MM")
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return fmt.Errorf("time %q is not a valid 24-hour time", value)
	}
	return nil
}

// FormatAMPM renders a 24-hour HH:MM time for chat display.
func FormatAMPM(value string) string {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return value
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return value
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return value
	}

	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	hours = hours % 12
	if hours == 0 {
		hours = 12
	}
	return fmt.Sprintf("%d:%02d %s", hours, minutes, period)
}
