package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	schedulex "github.com/medflow-ai/appointment-agent/agent/schedule"
)

func executeCheckByDoctor(ctx context.Context, store schedulex.Store, args map[string]any) (contractx.ToolResult, error) {
	result := contractx.ToolResult{Tool: ToolCheckByDoctor}

	date, doctor, errMsg := dateAndDoctorArgs(args)
	if errMsg != "" {
		result.Error = errMsg
		return result, nil
	}

	times, err := store.SlotsByDoctor(ctx, date, doctor)
	if err != nil {
		return result, fmt.Errorf("check availability by doctor: %w", err)
	}

	if len(times) == 0 {
		result.Result = "no availability in the entire day"
		return result, nil
	}
	result.Result = fmt.Sprintf("availability for %s\navailable slots: %s", date, strings.Join(times, ", "))
	return result, nil
}

func executeCheckBySpecialization(ctx context.Context, store schedulex.Store, args map[string]any) (contractx.ToolResult, error) {
	result := contractx.ToolResult{Tool: ToolCheckBySpecialization}

	date := stringArg(args, "date")
	if err := ValidateDate(date); err != nil {
		result.Error = err.Error()
		return result, nil
	}
	specialization := strings.ToLower(strings.TrimSpace(stringArg(args, "specialization")))
	if !schedulex.IsKnownSpecialization(specialization) {
		result.Error = fmt.Sprintf("unknown specialization %q", specialization)
		return result, nil
	}

	groups, err := store.SlotsBySpecialization(ctx, date, specialization)
	if err != nil {
		return result, fmt.Errorf("check availability by specialization: %w", err)
	}

	if len(groups) == 0 {
		result.Result = "no availability for the entire day"
		return result, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "availability for %s\n", date)
	for _, g := range groups {
		display := make([]string, 0, len(g.Times))
		for _, t := range g.Times {
			display = append(display, FormatAMPM(t))
		}
		fmt.Fprintf(&b, "%s. available slots: %s\n", g.Doctor, strings.Join(display, ", "))
	}
	result.Result = strings.TrimSpace(b.String())
	return result, nil
}

func executeBook(ctx context.Context, store schedulex.Store, patientID int64, args map[string]any) (contractx.ToolResult, error) {
	result := contractx.ToolResult{Tool: ToolBookAppointment}

	ref, errMsg := slotRefArgs(args, "date", "time")
	if errMsg != "" {
		result.Error = errMsg
		return result, nil
	}

	err := store.Reserve(ctx, ref, patientID)
	switch {
	case errors.Is(err, schedulex.ErrSlotTaken):
		result.Result = "no available appointments for that particular case"
	case err != nil:
		return result, fmt.Errorf("book appointment: %w", err)
	default:
		result.Result = "appointment has been successfully booked"
	}
	return result, nil
}

func executeCancel(ctx context.Context, store schedulex.Store, patientID int64, args map[string]any) (contractx.ToolResult, error) {
	result := contractx.ToolResult{Tool: ToolCancelAppointment}

	ref, errMsg := slotRefArgs(args, "date", "time")
	if errMsg != "" {
		result.Error = errMsg
		return result, nil
	}

	err := store.Release(ctx, ref, patientID)
	switch {
	case errors.Is(err, schedulex.ErrSlotNotFound):
		result.Result = "you don't have any appointment with that specification"
	case err != nil:
		return result, fmt.Errorf("cancel appointment: %w", err)
	default:
		result.Result = "appointment has been cancelled successfully"
	}
	return result, nil
}

func executeReschedule(ctx context.Context, store schedulex.Store, patientID int64, args map[string]any) (contractx.ToolResult, error) {
	result := contractx.ToolResult{Tool: ToolRescheduleAppointment}

	oldRef, errMsg := slotRefArgs(args, "old_date", "old_time")
	if errMsg != "" {
		result.Error = errMsg
		return result, nil
	}
	newRef, errMsg := slotRefArgs(args, "new_date", "new_time")
	if errMsg != "" {
		result.Error = errMsg
		return result, nil
	}

	err := store.Reschedule(ctx, oldRef, newRef, patientID)
	switch {
	case errors.Is(err, schedulex.ErrSlotTaken):
		result.Result = "no available slots for the desired period"
	case errors.Is(err, schedulex.ErrSlotNotFound):
		result.Result = "you don't have any appointment with that specification"
	case err != nil:
		return result, fmt.Errorf("reschedule appointment: %w", err)
	default:
		result.Result = "appointment has been successfully rescheduled"
	}
	return result, nil
}

func dateAndDoctorArgs(args map[string]any) (date, doctor, errMsg string) {
	date = stringArg(args, "date")
	if err := ValidateDate(date); err != nil {
		return "", "", err.Error()
	}
	doctor = strings.ToLower(strings.TrimSpace(stringArg(args, "doctor_name")))
	if !schedulex.IsKnownDoctor(doctor) {
		return "", "", fmt.Sprintf("unknown doctor %q; use an exact roster name", doctor)
	}
	return date, doctor, ""
}

func slotRefArgs(args map[string]any, dateKey, timeKey string) (schedulex.SlotRef, string) {
	date := stringArg(args, dateKey)
	if err := ValidateDate(date); err != nil {
		return schedulex.SlotRef{}, fmt.Sprintf("%s: %v", dateKey, err)
	}
	slotTime := stringArg(args, timeKey)
	if err := ValidateTime(slotTime); err != nil {
		return schedulex.SlotRef{}, fmt.Sprintf("%s: %v", timeKey, err)
	}
	doctor := strings.ToLower(strings.TrimSpace(stringArg(args, "doctor_name")))
	if !schedulex.IsKnownDoctor(doctor) {
		return schedulex.SlotRef{}, fmt.Sprintf("unknown doctor %q; use an exact roster name", doctor)
	}
	return schedulex.SlotRef{Date: date, Time: slotTime, Doctor: doctor}, ""
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	v, _ := args[key].(string)
	return v
}
