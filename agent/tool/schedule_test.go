package tool

import (
	"context"
	"strings"
	"testing"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	schedulex "github.com/medflow-ai/appointment-agent/agent/schedule"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

type fakeSlotStore struct {
	byDoctor     []string
	bySpecGroups []schedulex.DoctorSlots
	queryErr     error

	reserveErr    error
	releaseErr    error
	rescheduleErr error

	reserved    []schedulex.SlotRef
	released    []schedulex.SlotRef
	rescheduled [][2]schedulex.SlotRef
}

func (f *fakeSlotStore) SlotsByDoctor(ctx context.Context, date, doctor string) ([]string, error) {
	return f.byDoctor, f.queryErr
}

func (f *fakeSlotStore) SlotsBySpecialization(ctx context.Context, date, specialization string) ([]schedulex.DoctorSlots, error) {
	return f.bySpecGroups, f.queryErr
}

func (f *fakeSlotStore) Reserve(ctx context.Context, ref schedulex.SlotRef, patientID int64) error {
	f.reserved = append(f.reserved, ref)
	return f.reserveErr
}

func (f *fakeSlotStore) Release(ctx context.Context, ref schedulex.SlotRef, patientID int64) error {
	f.released = append(f.released, ref)
	return f.releaseErr
}

func (f *fakeSlotStore) Reschedule(ctx context.Context, oldRef, newRef schedulex.SlotRef, patientID int64) error {
	f.rescheduled = append(f.rescheduled, [2]schedulex.SlotRef{oldRef, newRef})
	return f.rescheduleErr
}

func TestExecutorCheckByDoctor(t *testing.T) {
	t.Parallel()

	store := &fakeSlotStore{byDoctor: []string{"08:00", "08:30"}}
	exec := NewExecutor(store)

	res, err := exec(context.Background(), 12345678, contractx.ToolRequest{Tool: ToolCheckByDoctor, Args: map[string]any{
		"date":        "16-10-2025",
		"doctor_name": "Jane Smith",
	}})
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	got, _ := res.Result.(string)
	if !strings.Contains(got, "16-10-2025") || !strings.Contains(got, "08:00, 08:30") {
		t.Fatalf("result = %q", got)
	}
}

func TestExecutorCheckByDoctorNoSlots(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(&fakeSlotStore{})

	res, err := exec(context.Background(), 12345678, contractx.ToolRequest{Tool: ToolCheckByDoctor, Args: map[string]any{
		"date":        "16-10-2025",
		"doctor_name": "jane smith",
	}})
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	if res.Result != "no availability in the entire day" {
		t.Fatalf("result = %v", res.Result)
	}
}

func TestExecutorValidationFailuresAreResults(t *testing.T) {
	t.Parallel()

	store := &fakeSlotStore{}
	exec := NewExecutor(store)

	cases := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{
			name: "bad date format",
			tool: ToolCheckByDoctor,
			args: map[string]any{"date": "2025-10-16", "doctor_name": "jane smith"},
			want: "DD-MM-YYYY",
		},
		{
			name: "unknown doctor",
			tool: ToolCheckByDoctor,
			args: map[string]any{"date": "16-10-2025", "doctor_name": "dr who"},
			want: "unknown doctor",
		},
		{
			name: "bad time format",
			tool: ToolBookAppointment,
			args: map[string]any{"date": "16-10-2025", "time": "8am", "doctor_name": "jane smith"},
			want: "HH:MM",
		},
		{
			name: "unknown specialization",
			tool: ToolCheckBySpecialization,
			args: map[string]any{"date": "16-10-2025", "specialization": "wizardry"},
			want: "unknown specialization",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res, err := exec(context.Background(), 12345678, contractx.ToolRequest{Tool: tc.tool, Args: tc.args})
			if err != nil {
				t.Fatalf("validation failure surfaced as Go error: %v", err)
			}
			if !strings.Contains(res.Error, tc.want) {
				t.Fatalf("result error = %q, want substring %q", res.Error, tc.want)
			}
		})
	}

	if len(store.reserved)+len(store.released)+len(store.rescheduled) != 0 {
		t.Fatalf("store was mutated by invalid arguments")
	}
}

func TestExecutorBookOutcomes(t *testing.T) {
	t.Parallel()

	args := map[string]any{"date": "16-10-2025", "time": "08:00", "doctor_name": "jane smith"}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		exec := NewExecutor(&fakeSlotStore{})
		res, err := exec(context.Background(), 12345678, contractx.ToolRequest{Tool: ToolBookAppointment, Args: args})
		if err != nil {
			t.Fatalf("exec error: %v", err)
		}
		if res.Result != "appointment has been successfully booked" {
			t.Fatalf("result = %v", res.Result)
		}
	})

	t.Run("slot taken", func(t *testing.T) {
		t.Parallel()
		exec := NewExecutor(&fakeSlotStore{reserveErr: schedulex.ErrSlotTaken})
		res, err := exec(context.Background(), 12345678, contractx.ToolRequest{Tool: ToolBookAppointment, Args: args})
		if err != nil {
			t.Fatalf("exec error: %v", err)
		}
		if res.Result != "no available appointments for that particular case" {
			t.Fatalf("result = %v", res.Result)
		}
	})
}

func TestExecutorCancelOutcomes(t *testing.T) {
	t.Parallel()

	args := map[string]any{"date": "16-10-2025", "time": "08:00", "doctor_name": "jane smith"}

	exec := NewExecutor(&fakeSlotStore{})
	res, err := exec(context.Background(), 12345678, contractx.ToolRequest{Tool: ToolCancelAppointment, Args: args})
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	if res.Result != "appointment has been cancelled successfully" {
		t.Fatalf("result = %v", res.Result)
	}

	exec = NewExecutor(&fakeSlotStore{releaseErr: schedulex.ErrSlotNotFound})
	res, err = exec(context.Background(), 12345678, contractx.ToolRequest{Tool: ToolCancelAppointment, Args: args})
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	if res.Result != "you don't have any appointment with that specification" {
		t.Fatalf("result = %v", res.Result)
	}
}

func TestExecutorRescheduleOutcomes(t *testing.T) {
	t.Parallel()

	args := map[string]any{
		"old_date":    "16-10-2025",
		"old_time":    "08:00",
		"new_date":    "17-10-2025",
		"new_time":    "09:00",
		"doctor_name": "jane smith",
	}

	store := &fakeSlotStore{}
	exec := NewExecutor(store)
	res, err := exec(context.Background(), 12345678, contractx.ToolRequest{Tool: ToolRescheduleAppointment, Args: args})
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	if res.Result != "appointment has been successfully rescheduled" {
		t.Fatalf("result = %v", res.Result)
	}
	if len(store.rescheduled) != 1 {
		t.Fatalf("reschedule calls = %d", len(store.rescheduled))
	}
	move := store.rescheduled[0]
	if move[0].Time != "08:00" || move[1].Time != "09:00" {
		t.Fatalf("reschedule refs = %+v", move)
	}

	exec = NewExecutor(&fakeSlotStore{rescheduleErr: schedulex.ErrSlotTaken})
	res, err = exec(context.Background(), 12345678, contractx.ToolRequest{Tool: ToolRescheduleAppointment, Args: args})
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	if res.Result != "no available slots for the desired period" {
		t.Fatalf("result = %v", res.Result)
	}
}

func TestExecutorUnknownTool(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(&fakeSlotStore{})
	res, err := exec(context.Background(), 12345678, contractx.ToolRequest{Tool: "no.such_tool"})
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	if !strings.Contains(res.Error, "not available") {
		t.Fatalf("result error = %q", res.Error)
	}
}

func TestBuildForAgentToolSets(t *testing.T) {
	t.Parallel()

	availInfos, _ := BuildForAgent(statex.AgentAvailability, &fakeSlotStore{})
	if len(availInfos) != 2 {
		t.Fatalf("availability tools = %d, want 2", len(availInfos))
	}

	bookingInfos, _ := BuildForAgent(statex.AgentBooking, &fakeSlotStore{})
	if len(bookingInfos) != 3 {
		t.Fatalf("booking tools = %d, want 3", len(bookingInfos))
	}

	generalInfos, _ := BuildForAgent(statex.AgentGeneral, &fakeSlotStore{})
	if len(generalInfos) != 0 {
		t.Fatalf("general tools = %d, want 0", len(generalInfos))
	}
}
