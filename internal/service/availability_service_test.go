package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
)

const testTenantID = "6fa459ea-ee8a-4ca4-894e-db77e160355e"

type availabilityStoreStub struct {
	rule          *models.AvailabilityRule
	ruleErr       error
	closed        bool
	closedErr     error
	upserted      []models.AvailabilityRule
	setDates      []string
	clearedDates  []string
	listFrom      string
	getRuleCalled bool
}

func (s *availabilityStoreStub) GetRule(ctx context.Context, tenantID string, weekday int) (*models.AvailabilityRule, error) {
	s.getRuleCalled = true
	if s.ruleErr != nil {
		return nil, s.ruleErr
	}
	return s.rule, nil
}

func (s *availabilityStoreStub) ListRules(ctx context.Context, tenantID string) ([]models.AvailabilityRule, error) {
	if s.rule == nil {
		return nil, nil
	}
	return []models.AvailabilityRule{*s.rule}, nil
}

func (s *availabilityStoreStub) UpsertRules(ctx context.Context, tenantID string, rules []models.AvailabilityRule) error {
	s.upserted = rules
	return nil
}

func (s *availabilityStoreStub) IsClosed(ctx context.Context, tenantID, date string) (bool, error) {
	return s.closed, s.closedErr
}

func (s *availabilityStoreStub) SetClosedDate(ctx context.Context, tenantID, date string, reason *string) error {
	s.setDates = append(s.setDates, date)
	return nil
}

func (s *availabilityStoreStub) ClearClosedDate(ctx context.Context, tenantID, date string) error {
	s.clearedDates = append(s.clearedDates, date)
	return nil
}

func (s *availabilityStoreStub) ListClosedDates(ctx context.Context, tenantID, from string) ([]models.UnavailableDate, error) {
	s.listFrom = from
	return nil, nil
}

type bookingReaderStub struct {
	bookings []models.Booking
	called   bool
}

func (s *bookingReaderStub) ListActiveByDate(ctx context.Context, tenantID, date string) ([]models.Booking, error) {
	s.called = true
	return s.bookings, nil
}

type tenantReaderStub struct {
	tenant *models.Tenant
}

func (s *tenantReaderStub) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	if s.tenant == nil {
		return nil, sql.ErrNoRows
	}
	return s.tenant, nil
}

type cacheStub struct {
	stored   map[string][]models.Slot
	patterns []string
	sets     int
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	slots, ok := s.stored[key]
	if !ok {
		return sql.ErrNoRows
	}
	*(dest.(*[]models.Slot)) = slots
	return nil
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func newAvailabilityFixture(store *availabilityStoreStub, bookings *bookingReaderStub) *AvailabilityService {
	return NewAvailabilityService(store, bookings, &tenantReaderStub{}, nil, time.Minute, "UTC", nil, nil)
}

func hourRule(slotMinutes int) *models.AvailabilityRule {
	return &models.AvailabilityRule{
		TenantID:    testTenantID,
		Weekday:     2,
		OpenTime:    "09:00",
		CloseTime:   "17:00",
		SlotMinutes: slotMinutes,
	}
}

// 2026-09-15 is a Tuesday (weekday 2).
const testDate = "2026-09-15"

func TestComputeSlotsNoRuleYieldsEmpty(t *testing.T) {
	store := &availabilityStoreStub{ruleErr: sql.ErrNoRows}
	svc := newAvailabilityFixture(store, &bookingReaderStub{})

	slots, err := svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlotsClosedDateOverridesRule(t *testing.T) {
	store := &availabilityStoreStub{rule: hourRule(60), closed: true}
	bookings := &bookingReaderStub{}
	svc := newAvailabilityFixture(store, bookings)

	slots, err := svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.False(t, bookings.called, "bookings must not be consulted on a closed date")
}

func TestComputeSlotsFullOpenDay(t *testing.T) {
	store := &availabilityStoreStub{rule: hourRule(60)}
	svc := newAvailabilityFixture(store, &bookingReaderStub{})

	slots, err := svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	require.Len(t, slots, 8)
	assert.Equal(t, "09:00", slots[0].Start.Format("15:04"))
	assert.Equal(t, "16:00", slots[7].Start.Format("15:04"))
	assert.Equal(t, "17:00", slots[7].End.Format("15:04"))
}

func TestComputeSlotsExcludesOverlappingBooking(t *testing.T) {
	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	store := &availabilityStoreStub{rule: hourRule(60)}
	bookings := &bookingReaderStub{bookings: []models.Booking{{
		StartTime: day.Add(12 * time.Hour),
		EndTime:   day.Add(13 * time.Hour),
		Status:    models.BookingConfirmed,
	}}}
	svc := newAvailabilityFixture(store, bookings)

	slots, err := svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	require.Len(t, slots, 7)
	for _, slot := range slots {
		assert.NotEqual(t, "12:00", slot.Start.Format("15:04"))
	}
}

func TestComputeSlotsBoundaryTouchingBookingDoesNotConflict(t *testing.T) {
	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	store := &availabilityStoreStub{rule: hourRule(60)}
	bookings := &bookingReaderStub{bookings: []models.Booking{{
		StartTime: day.Add(11 * time.Hour),
		EndTime:   day.Add(12 * time.Hour),
		Status:    models.BookingConfirmed,
	}}}
	svc := newAvailabilityFixture(store, bookings)

	slots, err := svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	require.Len(t, slots, 7)

	starts := make([]string, 0, len(slots))
	for _, slot := range slots {
		starts = append(starts, slot.Start.Format("15:04"))
	}
	assert.Contains(t, starts, "12:00", "a booking ending at 12:00 must not block the 12:00 slot")
	assert.NotContains(t, starts, "11:00")
}

func TestComputeSlotsDropsPartialTrailingWindow(t *testing.T) {
	store := &availabilityStoreStub{rule: &models.AvailabilityRule{
		TenantID: testTenantID, Weekday: 2, OpenTime: "09:00", CloseTime: "10:30", SlotMinutes: 45,
	}}
	svc := newAvailabilityFixture(store, &bookingReaderStub{})

	slots, err := svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:45", slots[1].Start.Format("15:04"))
	assert.Equal(t, "10:30", slots[1].End.Format("15:04"))

	store.rule.CloseTime = "10:20"
	slots, err = svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	require.Len(t, slots, 1)
}

func TestComputeSlotsInvalidRuleDataYieldsEmptyDay(t *testing.T) {
	store := &availabilityStoreStub{rule: hourRule(0)}
	svc := newAvailabilityFixture(store, &bookingReaderStub{})

	slots, err := svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	assert.Empty(t, slots)

	store.rule = &models.AvailabilityRule{
		TenantID: testTenantID, Weekday: 2, OpenTime: "17:00", CloseTime: "09:00", SlotMinutes: 60,
	}
	slots, err = svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlotsRejectsBadInput(t *testing.T) {
	svc := newAvailabilityFixture(&availabilityStoreStub{}, &bookingReaderStub{})

	_, err := svc.ComputeSlots(context.Background(), testTenantID, "15-09-2026", "")
	require.Error(t, err)

	_, err = svc.ComputeSlots(context.Background(), "", testDate, "")
	require.Error(t, err)

	_, err = svc.ComputeSlots(context.Background(), testTenantID, testDate, "Mars/Olympus")
	require.Error(t, err)
}

func TestComputeSlotsUsesTenantTimezone(t *testing.T) {
	store := &availabilityStoreStub{rule: hourRule(60)}
	svc := NewAvailabilityService(store, &bookingReaderStub{}, &tenantReaderStub{
		tenant: &models.Tenant{ID: testTenantID, TimeZone: "America/New_York"},
	}, nil, time.Minute, "UTC", nil, nil)

	slots, err := svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	require.Len(t, slots, 8)
	loc, _ := time.LoadLocation("America/New_York")
	assert.Equal(t, "09:00", slots[0].Start.In(loc).Format("15:04"))
}

func TestComputeSlotsServedFromCache(t *testing.T) {
	day := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	cached := []models.Slot{{Start: day, End: day.Add(time.Hour)}}
	cache := &cacheStub{stored: map[string][]models.Slot{
		"slots:" + testTenantID + ":" + testDate + ":UTC": cached,
	}}
	store := &availabilityStoreStub{}
	svc := NewAvailabilityService(store, &bookingReaderStub{}, &tenantReaderStub{}, cache, time.Minute, "UTC", nil, nil)

	slots, err := svc.ComputeSlots(context.Background(), testTenantID, testDate, "")
	require.NoError(t, err)
	assert.Equal(t, cached, slots)
	assert.False(t, store.getRuleCalled, "cache hit must not touch the rule store")
}

func TestSetRulesValidatesAndInvalidates(t *testing.T) {
	store := &availabilityStoreStub{}
	cache := &cacheStub{}
	svc := NewAvailabilityService(store, &bookingReaderStub{}, &tenantReaderStub{}, cache, time.Minute, "UTC", nil, nil)

	err := svc.SetRules(context.Background(), dto.SetRulesRequest{
		TenantID: testTenantID,
		Rules: []dto.RuleInput{
			{Weekday: 1, OpenTime: "09:00", CloseTime: "17:00", SlotMinutes: 60},
			{Weekday: 2, OpenTime: "10:00:00", CloseTime: "18:00:00", SlotMinutes: 30},
		},
	})
	require.NoError(t, err)
	require.Len(t, store.upserted, 2)
	require.Len(t, cache.patterns, 1)
	assert.Equal(t, "slots:"+testTenantID+":*", cache.patterns[0])

	err = svc.SetRules(context.Background(), dto.SetRulesRequest{
		TenantID: testTenantID,
		Rules:    []dto.RuleInput{{Weekday: 1, OpenTime: "9am", CloseTime: "17:00", SlotMinutes: 60}},
	})
	require.Error(t, err)
}

func TestListClosedDatesCutoffUsesTenantTimezone(t *testing.T) {
	store := &availabilityStoreStub{}
	svc := NewAvailabilityService(store, &bookingReaderStub{}, &tenantReaderStub{
		tenant: &models.Tenant{ID: testTenantID, TimeZone: "Pacific/Honolulu"},
	}, nil, time.Minute, "UTC", nil, nil)

	_, err := svc.ListClosedDates(context.Background(), testTenantID)
	require.NoError(t, err)

	loc, _ := time.LoadLocation("Pacific/Honolulu")
	assert.Equal(t, time.Now().In(loc).Format(dateLayout), store.listFrom,
		"cutoff follows the tenant's calendar day, not UTC's")
}

func TestCloseAndReopenDateInvalidate(t *testing.T) {
	store := &availabilityStoreStub{}
	cache := &cacheStub{}
	svc := NewAvailabilityService(store, &bookingReaderStub{}, &tenantReaderStub{}, cache, time.Minute, "UTC", nil, nil)

	require.NoError(t, svc.CloseDate(context.Background(), dto.ClosedDateRequest{TenantID: testTenantID, Date: testDate}))
	require.NoError(t, svc.ReopenDate(context.Background(), testTenantID, testDate))
	assert.Equal(t, []string{testDate}, store.setDates)
	assert.Equal(t, []string{testDate}, store.clearedDates)
	assert.Len(t, cache.patterns, 2)

	require.Error(t, svc.ReopenDate(context.Background(), testTenantID, "not-a-date"))
}
