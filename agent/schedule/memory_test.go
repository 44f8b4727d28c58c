package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func testSlots() []Slot {
	return []Slot{
		{Date: "16-10-2025", Time: "08:00", Doctor: "jane smith", Specialization: "general_dentist", Available: true},
		{Date: "16-10-2025", Time: "08:30", Doctor: "jane smith", Specialization: "general_dentist", Available: true},
		{Date: "16-10-2025", Time: "08:00", Doctor: "john doe", Specialization: "general_dentist", Available: true},
		{Date: "16-10-2025", Time: "09:00", Doctor: "lisa brown", Specialization: "orthodontist", Available: false, PatientID: 7654321},
		{Date: "17-10-2025", Time: "08:00", Doctor: "jane smith", Specialization: "general_dentist", Available: true},
	}
}

func TestSlotsByDoctor(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(testSlots())

	times, err := store.SlotsByDoctor(context.Background(), "16-10-2025", "jane smith")
	if err != nil {
		t.Fatalf("SlotsByDoctor() error: %v", err)
	}
	if len(times) != 2 || times[0] != "08:00" || times[1] != "08:30" {
		t.Fatalf("SlotsByDoctor() = %v", times)
	}

	empty, err := store.SlotsByDoctor(context.Background(), "18-10-2025", "jane smith")
	if err != nil {
		t.Fatalf("SlotsByDoctor() error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("SlotsByDoctor() on empty day = %v", empty)
	}
}

func TestSlotsBySpecializationGroupsByDoctor(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(testSlots())

	groups, err := store.SlotsBySpecialization(context.Background(), "16-10-2025", "general_dentist")
	if err != nil {
		t.Fatalf("SlotsBySpecialization() error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %+v, want 2 doctors", groups)
	}
	if groups[0].Doctor != "jane smith" || len(groups[0].Times) != 2 {
		t.Fatalf("first group = %+v", groups[0])
	}
	if groups[1].Doctor != "john doe" || len(groups[1].Times) != 1 {
		t.Fatalf("second group = %+v", groups[1])
	}
}

func TestReserveConflicts(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(testSlots())
	ctx := context.Background()
	ref := SlotRef{Date: "16-10-2025", Time: "08:00", Doctor: "jane smith"}

	if err := store.Reserve(ctx, ref, 12345678); err != nil {
		t.Fatalf("first Reserve() error: %v", err)
	}
	if err := store.Reserve(ctx, ref, 87654321); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("second Reserve() = %v, want ErrSlotTaken", err)
	}

	missing := SlotRef{Date: "16-10-2025", Time: "23:00", Doctor: "jane smith"}
	if err := store.Reserve(ctx, missing, 12345678); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("Reserve of absent slot = %v, want ErrSlotTaken", err)
	}
}

func TestReleaseOwnership(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(testSlots())
	ctx := context.Background()
	ref := SlotRef{Date: "16-10-2025", Time: "09:00", Doctor: "lisa brown"}

	// Reserved by 7654321; another patient must not be able to free it.
	if err := store.Release(ctx, ref, 12345678); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("Release by non-owner = %v, want ErrSlotNotFound", err)
	}
	if err := store.Release(ctx, ref, 7654321); err != nil {
		t.Fatalf("Release by owner error: %v", err)
	}

	// The slot is free again.
	if err := store.Reserve(ctx, ref, 12345678); err != nil {
		t.Fatalf("Reserve after release error: %v", err)
	}
}

func TestRescheduleMovesReservation(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(testSlots())
	ctx := context.Background()
	oldRef := SlotRef{Date: "16-10-2025", Time: "08:00", Doctor: "jane smith"}
	newRef := SlotRef{Date: "17-10-2025", Time: "08:00", Doctor: "jane smith"}

	if err := store.Reserve(ctx, oldRef, 12345678); err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	if err := store.Reschedule(ctx, oldRef, newRef, 12345678); err != nil {
		t.Fatalf("Reschedule() error: %v", err)
	}

	// Old slot freed, new slot held.
	if err := store.Reserve(ctx, oldRef, 87654321); err != nil {
		t.Fatalf("old slot not freed: %v", err)
	}
	if err := store.Reserve(ctx, newRef, 87654321); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("new slot not held: %v", err)
	}
}

func TestRescheduleIsAllOrNothing(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(testSlots())
	ctx := context.Background()
	oldRef := SlotRef{Date: "16-10-2025", Time: "08:00", Doctor: "jane smith"}
	takenRef := SlotRef{Date: "16-10-2025", Time: "09:00", Doctor: "lisa brown"}

	if err := store.Reserve(ctx, oldRef, 12345678); err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}

	// Target already reserved by someone else: the old reservation must
	// survive untouched.
	if err := store.Reschedule(ctx, oldRef, takenRef, 12345678); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("Reschedule() = %v, want ErrSlotTaken", err)
	}
	if err := store.Reserve(ctx, oldRef, 87654321); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("old reservation was released on failed reschedule")
	}
}

func TestRescheduleRejectsNonOwner(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(testSlots())
	ctx := context.Background()
	oldRef := SlotRef{Date: "16-10-2025", Time: "08:00", Doctor: "jane smith"}
	newRef := SlotRef{Date: "16-10-2025", Time: "08:30", Doctor: "jane smith"}

	if err := store.Reserve(ctx, oldRef, 12345678); err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}

	// A different patient must not be able to move the booking, and the
	// failed attempt must not leave the new slot claimed.
	if err := store.Reschedule(ctx, oldRef, newRef, 99999999); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("Reschedule() = %v, want ErrSlotNotFound", err)
	}
	if err := store.Reserve(ctx, newRef, 87654321); err != nil {
		t.Fatalf("new slot left claimed after failed reschedule: %v", err)
	}
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(testSlots())
	ref := SlotRef{Date: "16-10-2025", Time: "08:00", Doctor: "jane smith"}

	const contenders = 32
	var wg sync.WaitGroup
	wins := make(chan int64, contenders)

	for i := 0; i < contenders; i++ {
		patientID := int64(10_000_000 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Reserve(context.Background(), ref, patientID); err == nil {
				wins <- patientID
			}
		}()
	}
	wg.Wait()
	close(wins)

	if got := len(wins); got != 1 {
		t.Fatalf("%d concurrent reservations succeeded, want exactly 1", got)
	}
}

func TestSeedSlotsCoversRoster(t *testing.T) {
	t.Parallel()

	slots := SeedSlots([]string{"16-10-2025"})
	if want := len(Doctors) * 8; len(slots) != want {
		t.Fatalf("len(slots) = %d, want %d", len(slots), want)
	}
	for _, s := range slots {
		if !IsKnownDoctor(s.Doctor) {
			t.Fatalf("seeded unknown doctor %q", s.Doctor)
		}
		if !IsKnownSpecialization(s.Specialization) {
			t.Fatalf("seeded unknown specialization %q", s.Specialization)
		}
		if !s.Available {
			t.Fatalf("seeded slot not available: %+v", s)
		}
	}
}
