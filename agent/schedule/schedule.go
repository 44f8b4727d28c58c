// Package schedule is the appointment slot store: a tabular set of
// (date, time, doctor) slots that are either free or reserved by a
// patient. Reserve and release are atomic check-then-set operations so
// two concurrent bookings cannot both win the same slot.
package schedule

import (
	"context"
	"errors"
)

var (
	ErrSlotTaken    = errors.New("slot is no longer available")
	ErrSlotNotFound = errors.New("no matching reservation found")
)

// Slot is one bookable unit. Date is DD-MM-YYYY, Time is 24-hour HH:MM.
type Slot struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	Doctor         string `json:"doctor_name"`
	Specialization string `json:"specialization"`
	Available      bool   `json:"is_available"`
	PatientID      int64  `json:"patient_id,omitempty"`
}

// SlotRef identifies a slot for mutations.
type SlotRef struct {
	Date   string
	Time   string
	Doctor string
}

// DoctorSlots groups free times under one practitioner for the
// by-specialization query shape.
type DoctorSlots struct {
	Doctor string   `json:"doctor_name"`
	Times  []string `json:"times"`
}

// Store is the capability interface the task handlers consume. Date and
// time arguments are validated by the caller before they reach the store.
type Store interface {
	// SlotsByDoctor returns the free times for one practitioner on a date.
	SlotsByDoctor(ctx context.Context, date, doctor string) ([]string, error)
	// SlotsBySpecialization returns free times on a date grouped by doctor.
	SlotsBySpecialization(ctx context.Context, date, specialization string) ([]DoctorSlots, error)
	// Reserve claims a free slot for a patient. Returns ErrSlotTaken when
	// the slot is absent or already reserved.
	Reserve(ctx context.Context, ref SlotRef, patientID int64) error
	// Release frees a slot previously reserved by the same patient.
	// Returns ErrSlotNotFound when no such reservation exists.
	Release(ctx context.Context, ref SlotRef, patientID int64) error
	// Reschedule atomically moves a reservation from oldRef to newRef.
	// The whole move is one critical section: when the new slot has no
	// room the old reservation is left untouched, and ownership of the
	// old slot is re-checked under the same lock.
	Reschedule(ctx context.Context, oldRef, newRef SlotRef, patientID int64) error
}
