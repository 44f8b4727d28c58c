package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// SlotRow maps the doctor_slots table.
type SlotRow struct {
	bun.BaseModel `bun:"table:doctor_slots"`

	Date           string `bun:"date_slot"`
	Time           string `bun:"time_slot"`
	Doctor         string `bun:"doctor_name"`
	Specialization string `bun:"specialization"`
	Available      bool   `bun:"is_available"`
	PatientID      int64  `bun:"patient_to_attend,nullzero"`
}

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

// PostgresStore implements Store on a Postgres table via bun. All
// mutations are conditional UPDATEs (or one transaction of them), so
// there is no check-then-set window between availability and claim.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDB wraps an existing bun handle (used in tests).
func NewPostgresStoreFromDB(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) SlotsByDoctor(ctx context.Context, date, doctor string) ([]string, error) {
	var times []string
	err := s.db.NewSelect().
		Model((*SlotRow)(nil)).
		Column("time_slot").
		Where("date_slot = ?", date).
		Where("lower(doctor_name) = lower(?)", doctor).
		Where("is_available = TRUE").
		Order("time_slot ASC").
		Scan(ctx, &times)
	if err != nil {
		return nil, fmt.Errorf("query slots by doctor: %w", err)
	}
	return times, nil
}

func (s *PostgresStore) SlotsBySpecialization(ctx context.Context, date, specialization string) ([]DoctorSlots, error) {
	var rows []SlotRow
	err := s.db.NewSelect().
		Model(&rows).
		Column("doctor_name", "time_slot").
		Where("date_slot = ?", date).
		Where("specialization = ?", specialization).
		Where("is_available = TRUE").
		Order("doctor_name ASC", "time_slot ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("query slots by specialization: %w", err)
	}

	var groups []DoctorSlots
	for _, row := range rows {
		if n := len(groups); n > 0 && groups[n-1].Doctor == row.Doctor {
			groups[n-1].Times = append(groups[n-1].Times, row.Time)
			continue
		}
		groups = append(groups, DoctorSlots{Doctor: row.Doctor, Times: []string{row.Time}})
	}
	return groups, nil
}

func (s *PostgresStore) Reserve(ctx context.Context, ref SlotRef, patientID int64) error {
	res, err := s.db.NewUpdate().
		Model((*SlotRow)(nil)).
		Set("is_available = FALSE").
		Set("patient_to_attend = ?", patientID).
		Where("date_slot = ?", ref.Date).
		Where("time_slot = ?", ref.Time).
		Where("lower(doctor_name) = lower(?)", ref.Doctor).
		Where("is_available = TRUE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("reserve slot: %w", err)
	}
	return requireRow(res, ErrSlotTaken)
}

func (s *PostgresStore) Release(ctx context.Context, ref SlotRef, patientID int64) error {
	res, err := s.db.NewUpdate().
		Model((*SlotRow)(nil)).
		Set("is_available = TRUE").
		Set("patient_to_attend = NULL").
		Where("date_slot = ?", ref.Date).
		Where("time_slot = ?", ref.Time).
		Where("lower(doctor_name) = lower(?)", ref.Doctor).
		Where("patient_to_attend = ?", patientID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	return requireRow(res, ErrSlotNotFound)
}

// Reschedule claims the new slot and frees the old one inside a single
// transaction. Claim first: when the new slot has no room the transaction
// rolls back before the old reservation is ever touched.
func (s *PostgresStore) Reschedule(ctx context.Context, oldRef, newRef SlotRef, patientID int64) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*SlotRow)(nil)).
			Set("is_available = FALSE").
			Set("patient_to_attend = ?", patientID).
			Where("date_slot = ?", newRef.Date).
			Where("time_slot = ?", newRef.Time).
			Where("lower(doctor_name) = lower(?)", newRef.Doctor).
			Where("is_available = TRUE").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("claim new slot: %w", err)
		}
		if err := requireRow(res, ErrSlotTaken); err != nil {
			return err
		}

		res, err = tx.NewUpdate().
			Model((*SlotRow)(nil)).
			Set("is_available = TRUE").
			Set("patient_to_attend = NULL").
			Where("date_slot = ?", oldRef.Date).
			Where("time_slot = ?", oldRef.Time).
			Where("lower(doctor_name) = lower(?)", oldRef.Doctor).
			Where("patient_to_attend = ?", patientID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("release old slot: %w", err)
		}
		return requireRow(res, ErrSlotNotFound)
	})
}

func requireRow(res sql.Result, sentinel error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel
	}
	return nil
}
