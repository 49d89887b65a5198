package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
)

const dateLayout = "2006-01-02"

type availabilityStore interface {
	GetRule(ctx context.Context, tenantID string, weekday int) (*models.AvailabilityRule, error)
	ListRules(ctx context.Context, tenantID string) ([]models.AvailabilityRule, error)
	UpsertRules(ctx context.Context, tenantID string, rules []models.AvailabilityRule) error
	IsClosed(ctx context.Context, tenantID, date string) (bool, error)
	SetClosedDate(ctx context.Context, tenantID, date string, reason *string) error
	ClearClosedDate(ctx context.Context, tenantID, date string) error
	ListClosedDates(ctx context.Context, tenantID, from string) ([]models.UnavailableDate, error)
}

type slotBookingReader interface {
	ListActiveByDate(ctx context.Context, tenantID, date string) ([]models.Booking, error)
}

type tenantZoneReader interface {
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
}

type slotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type slotMetrics interface {
	ObserveSlotComputation(cached bool, duration time.Duration)
}

// AvailabilityService turns weekday rules, closed dates and existing
// bookings into free bookable slots, and manages the rule store.
type AvailabilityService struct {
	repo      availabilityStore
	bookings  slotBookingReader
	tenants   tenantZoneReader
	cache     slotCache
	cacheTTL  time.Duration
	defaultTZ string
	metrics   slotMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService builds an AvailabilityService. cache may be nil.
func NewAvailabilityService(
	repo availabilityStore,
	bookings slotBookingReader,
	tenants tenantZoneReader,
	cache slotCache,
	cacheTTL time.Duration,
	defaultTZ string,
	validate *validator.Validate,
	logger *zap.Logger,
) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultTZ == "" {
		defaultTZ = "Africa/Accra"
	}
	return &AvailabilityService{
		repo:      repo,
		bookings:  bookings,
		tenants:   tenants,
		cache:     cache,
		cacheTTL:  cacheTTL,
		defaultTZ: defaultTZ,
		validator: validate,
		logger:    logger,
	}
}

// SetMetrics attaches an optional metrics observer.
func (s *AvailabilityService) SetMetrics(m slotMetrics) {
	s.metrics = m
}

// ComputeSlots returns the free slots for a tenant on a calendar date, in
// chronological order. A missing rule or a closed date yields an empty
// result, not an error. tz falls back to the tenant's zone, then the
// configured default.
func (s *AvailabilityService) ComputeSlots(ctx context.Context, tenantID, date, tz string) ([]models.Slot, error) {
	if tenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant_id is required")
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}

	loc, err := s.resolveLocation(ctx, tenantID, tz)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	cacheKey := fmt.Sprintf("slots:%s:%s:%s", tenantID, date, loc.String())
	if s.cache != nil {
		var cached []models.Slot
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.observe(true, started)
			return cached, nil
		}
	}

	weekday := int(time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).Weekday())

	rule, err := s.repo.GetRule(ctx, tenantID, weekday)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.Slot{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability rule")
	}

	closed, err := s.repo.IsClosed(ctx, tenantID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check closed dates")
	}
	if closed {
		// Exception overrides the rule entirely; bookings are never consulted.
		return []models.Slot{}, nil
	}

	slots := materializeSlots(rule, day, loc, s.logger)
	if len(slots) == 0 {
		return slots, nil
	}

	booked, err := s.bookings.ListActiveByDate(ctx, tenantID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
	}

	free := slots[:0]
	for _, slot := range slots {
		if !overlapsAny(slot, booked) {
			free = append(free, slot)
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, free, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache slots", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}

	s.observe(false, started)
	return free, nil
}

func (s *AvailabilityService) observe(cached bool, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSlotComputation(cached, time.Since(started))
	}
}

// materializeSlots emits consecutive fixed-width windows across the open
// interval, dropping any partial trailing window. Invalid rule data yields
// an empty day rather than an error.
func materializeSlots(rule *models.AvailabilityRule, day time.Time, loc *time.Location, logger *zap.Logger) []models.Slot {
	if rule.SlotMinutes <= 0 {
		logger.Warn("availability rule has non-positive slot_minutes",
			zap.String("tenant_id", rule.TenantID), zap.Int("weekday", rule.Weekday))
		return []models.Slot{}
	}
	openH, openM, err := parseClock(rule.OpenTime)
	if err != nil {
		logger.Warn("availability rule has malformed open_time", zap.String("tenant_id", rule.TenantID), zap.Error(err))
		return []models.Slot{}
	}
	closeH, closeM, err := parseClock(rule.CloseTime)
	if err != nil {
		logger.Warn("availability rule has malformed close_time", zap.String("tenant_id", rule.TenantID), zap.Error(err))
		return []models.Slot{}
	}

	open := time.Date(day.Year(), day.Month(), day.Day(), openH, openM, 0, 0, loc)
	close := time.Date(day.Year(), day.Month(), day.Day(), closeH, closeM, 0, 0, loc)
	if !open.Before(close) {
		return []models.Slot{}
	}

	step := time.Duration(rule.SlotMinutes) * time.Minute
	slots := []models.Slot{}
	for start := open; !start.Add(step).After(close); start = start.Add(step) {
		slots = append(slots, models.Slot{Start: start, End: start.Add(step)})
	}
	return slots
}

// overlapsAny applies the half-open interval test with strict inequality on
// both ends: a booking ending exactly at a slot's start does not conflict.
func overlapsAny(slot models.Slot, bookings []models.Booking) bool {
	for _, b := range bookings {
		if slot.Start.Before(b.EndTime) && b.StartTime.Before(slot.End) {
			return true
		}
	}
	return false
}

// SetRules atomically replaces the rules for the listed weekdays.
func (s *AvailabilityService) SetRules(ctx context.Context, req dto.SetRulesRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rules payload")
	}
	rules := make([]models.AvailabilityRule, 0, len(req.Rules))
	for _, in := range req.Rules {
		if _, _, err := parseClock(in.OpenTime); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weekday %d: open_time must be HH:MM", in.Weekday))
		}
		if _, _, err := parseClock(in.CloseTime); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weekday %d: close_time must be HH:MM", in.Weekday))
		}
		rules = append(rules, models.AvailabilityRule{
			TenantID:    req.TenantID,
			Weekday:     in.Weekday,
			OpenTime:    in.OpenTime,
			CloseTime:   in.CloseTime,
			SlotMinutes: in.SlotMinutes,
		})
	}
	if err := s.repo.UpsertRules(ctx, req.TenantID, rules); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert rules")
	}
	return s.InvalidateSlots(ctx, req.TenantID)
}

// ListRules returns the tenant's weekday rules.
func (s *AvailabilityService) ListRules(ctx context.Context, tenantID string) ([]models.AvailabilityRule, error) {
	if tenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant_id is required")
	}
	rules, err := s.repo.ListRules(ctx, tenantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rules")
	}
	return rules, nil
}

// CloseDate marks a date fully closed. Idempotent.
func (s *AvailabilityService) CloseDate(ctx context.Context, req dto.ClosedDateRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid closed-date payload")
	}
	if err := s.repo.SetClosedDate(ctx, req.TenantID, req.Date, req.Reason); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close date")
	}
	return s.InvalidateSlots(ctx, req.TenantID)
}

// ReopenDate removes a closed-date exception. Idempotent.
func (s *AvailabilityService) ReopenDate(ctx context.Context, tenantID, date string) error {
	if tenantID == "" || date == "" {
		return appErrors.Clone(appErrors.ErrValidation, "tenant_id and date are required")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if err := s.repo.ClearClosedDate(ctx, tenantID, date); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reopen date")
	}
	return s.InvalidateSlots(ctx, tenantID)
}

// ListClosedDates returns upcoming closed dates for a tenant. "Today" is
// determined in the tenant's zone so a still-current closed date doesn't
// drop off the list while the tenant's day is in progress.
func (s *AvailabilityService) ListClosedDates(ctx context.Context, tenantID string) ([]models.UnavailableDate, error) {
	if tenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant_id is required")
	}
	loc, err := s.resolveLocation(ctx, tenantID, "")
	if err != nil {
		return nil, err
	}
	from := time.Now().In(loc).Format(dateLayout)
	dates, err := s.repo.ListClosedDates(ctx, tenantID, from)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list closed dates")
	}
	return dates, nil
}

// InvalidateSlots drops every cached slot result for the tenant. Called on
// rule, closed-date and booking mutations so cached availability never goes
// stale.
func (s *AvailabilityService) InvalidateSlots(ctx context.Context, tenantID string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("slots:%s:*", tenantID)); err != nil {
		s.logger.Warn("failed to invalidate slot cache", zap.String("tenant_id", tenantID), zap.Error(err))
	}
	return nil
}

func (s *AvailabilityService) resolveLocation(ctx context.Context, tenantID, tz string) (*time.Location, error) {
	if tz == "" {
		tenant, err := s.tenants.GetByID(ctx, tenantID)
		switch {
		case err == nil && tenant.TimeZone != "":
			tz = tenant.TimeZone
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tenant")
		default:
			tz = s.defaultTZ
		}
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown timezone %q", tz))
	}
	return loc, nil
}

// parseClock accepts HH:MM and HH:MM:SS wall-clock strings.
func parseClock(raw string) (hour, minute int, err error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, fmt.Errorf("malformed clock value %q", raw)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("malformed hour in %q", raw)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("malformed minute in %q", raw)
	}
	return hour, minute, nil
}
