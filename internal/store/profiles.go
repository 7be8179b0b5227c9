package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TripProfile holds the user-provided trip details of one chat. Nil fields
// were not provided.
type TripProfile struct {
	ChatID      int64
	Destination *string
	StartDate   *string
	EndDate     *string
	Budget      *string
	Travelers   *string
	Interests   *string
	Constraints *string
	UpdatedAt   time.Time
}

type Profiles struct {
	db *DB
}

func NewProfiles(db *DB) *Profiles {
	return &Profiles{db: db}
}

func (r *Profiles) Get(ctx context.Context, chatID int64) (*TripProfile, error) {
	var (
		p       TripProfile
		fields  [7]sql.NullString
		updated int64
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(
		`SELECT chat_id, destination, start_date, end_date, budget, travelers, interests, travel_constraints, updated_at
FROM trip_profiles WHERE chat_id = ?`), chatID).
		Scan(&p.ChatID, &fields[0], &fields[1], &fields[2], &fields[3], &fields[4], &fields[5], &fields[6], &updated)
	if err != nil {
		return nil, translate(err)
	}
	p.Destination = stringPtr(fields[0])
	p.StartDate = stringPtr(fields[1])
	p.EndDate = stringPtr(fields[2])
	p.Budget = stringPtr(fields[3])
	p.Travelers = stringPtr(fields[4])
	p.Interests = stringPtr(fields[5])
	p.Constraints = stringPtr(fields[6])
	p.UpdatedAt = fromMillis(updated)
	return &p, nil
}

// Upsert creates or replaces the profile of p.ChatID.
func (r *Profiles) Upsert(ctx context.Context, p *TripProfile) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
INSERT INTO trip_profiles (chat_id, destination, start_date, end_date, budget, travelers, interests, travel_constraints, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (chat_id) DO UPDATE SET
    destination = excluded.destination,
    start_date = excluded.start_date,
    end_date = excluded.end_date,
    budget = excluded.budget,
    travelers = excluded.travelers,
    interests = excluded.interests,
    travel_constraints = excluded.travel_constraints,
    updated_at = excluded.updated_at`),
		p.ChatID, nullString(p.Destination), nullString(p.StartDate), nullString(p.EndDate),
		nullString(p.Budget), nullString(p.Travelers), nullString(p.Interests), nullString(p.Constraints),
		millis(now))
	if err != nil {
		return fmt.Errorf("save trip profile: %w", err)
	}
	p.UpdatedAt = fromMillis(millis(now))
	return nil
}
