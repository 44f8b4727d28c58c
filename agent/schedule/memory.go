package schedule

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore holds the slot table in memory behind one mutex, which is
// the whole critical section for check-then-set. Used in tests and in
// deployments without Postgres.
type MemoryStore struct {
	mu    sync.Mutex
	slots []Slot
}

func NewMemoryStore(slots []Slot) *MemoryStore {
	return &MemoryStore{slots: append([]Slot(nil), slots...)}
}

func (m *MemoryStore) SlotsByDoctor(ctx context.Context, date, doctor string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var times []string
	for _, s := range m.slots {
		if s.Date == date && strings.EqualFold(s.Doctor, doctor) && s.Available {
			times = append(times, s.Time)
		}
	}
	sort.Strings(times)
	return times, nil
}

func (m *MemoryStore) SlotsBySpecialization(ctx context.Context, date, specialization string) ([]DoctorSlots, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDoctor := make(map[string][]string)
	for _, s := range m.slots {
		if s.Date == date && s.Specialization == specialization && s.Available {
			byDoctor[s.Doctor] = append(byDoctor[s.Doctor], s.Time)
		}
	}

	doctors := make([]string, 0, len(byDoctor))
	for d := range byDoctor {
		doctors = append(doctors, d)
	}
	sort.Strings(doctors)

	groups := make([]DoctorSlots, 0, len(doctors))
	for _, d := range doctors {
		times := byDoctor[d]
		sort.Strings(times)
		groups = append(groups, DoctorSlots{Doctor: d, Times: times})
	}
	return groups, nil
}

func (m *MemoryStore) Reserve(ctx context.Context, ref SlotRef, patientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserveLocked(ref, patientID)
}

func (m *MemoryStore) Release(ctx context.Context, ref SlotRef, patientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseLocked(ref, patientID)
}

func (m *MemoryStore) Reschedule(ctx context.Context, oldRef, newRef SlotRef, patientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Claim the new slot first so a full target leaves the old
	// reservation untouched.
	if err := m.reserveLocked(newRef, patientID); err != nil {
		return err
	}
	if err := m.releaseLocked(oldRef, patientID); err != nil {
		// Old slot no longer belongs to this patient: undo the claim.
		_ = m.releaseLocked(newRef, patientID)
		return err
	}
	return nil
}

func (m *MemoryStore) reserveLocked(ref SlotRef, patientID int64) error {
	for i := range m.slots {
		s := &m.slots[i]
		if s.Date == ref.Date && s.Time == ref.Time && strings.EqualFold(s.Doctor, ref.Doctor) {
			if !s.Available {
				return ErrSlotTaken
			}
			s.Available = false
			s.PatientID = patientID
			return nil
		}
	}
	return ErrSlotTaken
}

func (m *MemoryStore) releaseLocked(ref SlotRef, patientID int64) error {
	for i := range m.slots {
		s := &m.slots[i]
		if s.Date == ref.Date && s.Time == ref.Time && strings.EqualFold(s.Doctor, ref.Doctor) &&
			!s.Available && s.PatientID == patientID {
			s.Available = true
			s.PatientID = 0
			return nil
		}
	}
	return ErrSlotNotFound
}
