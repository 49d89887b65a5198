package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/akotolabs/waflow/internal/models"
)

// AvailabilityRepository persists weekday rules and closed dates.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// GetRule fetches the rule for one weekday. sql.ErrNoRows passes through so
// callers can treat a missing rule as "no availability".
func (r *AvailabilityRepository) GetRule(ctx context.Context, tenantID string, weekday int) (*models.AvailabilityRule, error) {
	const query = `SELECT tenant_id, weekday, open_time, close_time, slot_minutes, updated_at
FROM availability_rules WHERE tenant_id = $1 AND weekday = $2 LIMIT 1`
	var rule models.AvailabilityRule
	if err := r.db.GetContext(ctx, &rule, query, tenantID, weekday); err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListRules returns all weekday rules for a tenant ordered by weekday.
func (r *AvailabilityRepository) ListRules(ctx context.Context, tenantID string) ([]models.AvailabilityRule, error) {
	const query = `SELECT tenant_id, weekday, open_time, close_time, slot_minutes, updated_at
FROM availability_rules WHERE tenant_id = $1 ORDER BY weekday`
	var rules []models.AvailabilityRule
	if err := r.db.SelectContext(ctx, &rules, query, tenantID); err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}
	return rules, nil
}

// UpsertRules replaces the rules for the given weekdays in a single
// transaction: either every row is applied or none are.
func (r *AvailabilityRepository) UpsertRules(ctx context.Context, tenantID string, rules []models.AvailabilityRule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rules upsert: %w", err)
	}
	const query = `INSERT INTO availability_rules (tenant_id, weekday, open_time, close_time, slot_minutes, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (tenant_id, weekday) DO UPDATE SET open_time = EXCLUDED.open_time, close_time = EXCLUDED.close_time,
slot_minutes = EXCLUDED.slot_minutes, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for _, rule := range rules {
		if _, err := tx.ExecContext(ctx, query, tenantID, rule.Weekday, rule.OpenTime, rule.CloseTime, rule.SlotMinutes, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert rule weekday %d: %w", rule.Weekday, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rules upsert: %w", err)
	}
	return nil
}

// IsClosed reports whether the tenant marked the date as fully closed.
func (r *AvailabilityRepository) IsClosed(ctx context.Context, tenantID, date string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM unavailable_dates WHERE tenant_id = $1 AND date = $2)`
	var closed bool
	if err := r.db.GetContext(ctx, &closed, query, tenantID, date); err != nil {
		return false, fmt.Errorf("check closed date: %w", err)
	}
	return closed, nil
}

// SetClosedDate closes a date. Closing an already-closed date is a no-op.
func (r *AvailabilityRepository) SetClosedDate(ctx context.Context, tenantID, date string, reason *string) error {
	const query = `INSERT INTO unavailable_dates (tenant_id, date, reason, created_at)
VALUES ($1, $2, $3, $4) ON CONFLICT (tenant_id, date) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, tenantID, date, reason, time.Now().UTC()); err != nil {
		return fmt.Errorf("set closed date: %w", err)
	}
	return nil
}

// ClearClosedDate reopens a date. Reopening an open date is a no-op.
func (r *AvailabilityRepository) ClearClosedDate(ctx context.Context, tenantID, date string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM unavailable_dates WHERE tenant_id = $1 AND date = $2", tenantID, date); err != nil {
		return fmt.Errorf("clear closed date: %w", err)
	}
	return nil
}

// ListClosedDates returns closed dates from the given date onwards.
func (r *AvailabilityRepository) ListClosedDates(ctx context.Context, tenantID, from string) ([]models.UnavailableDate, error) {
	const query = `SELECT tenant_id, date, reason, created_at
FROM unavailable_dates WHERE tenant_id = $1 AND date >= $2 ORDER BY date`
	var dates []models.UnavailableDate
	if err := r.db.SelectContext(ctx, &dates, query, tenantID, from); err != nil {
		return nil, fmt.Errorf("list closed dates: %w", err)
	}
	return dates, nil
}
