package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
)

type availabilityServiceMock struct {
	slots      []models.Slot
	slotsErr   error
	lastDate   string
	lastTZ     string
	setReq     dto.SetRulesRequest
	setCalled  bool
	closeReq   dto.ClosedDateRequest
	reopenDate string
}

func (m *availabilityServiceMock) ComputeSlots(ctx context.Context, tenantID, date, tz string) ([]models.Slot, error) {
	m.lastDate = date
	m.lastTZ = tz
	return m.slots, m.slotsErr
}

func (m *availabilityServiceMock) SetRules(ctx context.Context, req dto.SetRulesRequest) error {
	m.setCalled = true
	m.setReq = req
	return nil
}

func (m *availabilityServiceMock) ListRules(ctx context.Context, tenantID string) ([]models.AvailabilityRule, error) {
	return nil, nil
}

func (m *availabilityServiceMock) CloseDate(ctx context.Context, req dto.ClosedDateRequest) error {
	m.closeReq = req
	return nil
}

func (m *availabilityServiceMock) ReopenDate(ctx context.Context, tenantID, date string) error {
	m.reopenDate = date
	return nil
}

func (m *availabilityServiceMock) ListClosedDates(ctx context.Context, tenantID string) ([]models.UnavailableDate, error) {
	return nil, nil
}

func TestAvailabilityHandlerGetSlots(t *testing.T) {
	gin.SetMode(gin.TestMode)
	day := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	mockSvc := &availabilityServiceMock{slots: []models.Slot{{Start: day, End: day.Add(time.Hour)}}}
	handler := NewAvailabilityHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tenants/tenant-1/slots?date=2026-09-15&tz=UTC", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tenant-1"}}

	handler.GetSlots(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-09-15", mockSvc.lastDate)
	assert.Equal(t, "UTC", mockSvc.lastTZ)

	var envelope struct {
		Data []dto.SlotResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
}

func TestAvailabilityHandlerGetSlotsEmptyDaySerialisesAsArray(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(&availabilityServiceMock{slots: nil})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tenants/tenant-1/slots?date=2026-09-15", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tenant-1"}}

	handler.GetSlots(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestAvailabilityHandlerGetSlotsError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(&availabilityServiceMock{
		slotsErr: appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tenants/tenant-1/slots?date=bogus", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tenant-1"}}

	handler.GetSlots(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerSetRulesUsesPathTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &availabilityServiceMock{}
	handler := NewAvailabilityHandler(mockSvc)

	payload, _ := json.Marshal(dto.SetRulesRequest{
		TenantID: "ignored-body-value",
		Rules:    []dto.RuleInput{{Weekday: 1, OpenTime: "09:00", CloseTime: "17:00", SlotMinutes: 60}},
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/tenants/tenant-1/availability/rules", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tenant-1"}}

	handler.SetRules(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.setCalled)
	assert.Equal(t, "tenant-1", mockSvc.setReq.TenantID)
}

func TestAvailabilityHandlerSetRulesInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(&availabilityServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/tenants/tenant-1/availability/rules", bytes.NewBufferString(`{"rules":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tenant-1"}}

	handler.SetRules(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerReopenDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &availabilityServiceMock{}
	handler := NewAvailabilityHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/tenants/tenant-1/availability/closed-dates/2026-09-15", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tenant-1"}, {Key: "date", Value: "2026-09-15"}}

	handler.ReopenDate(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2026-09-15", mockSvc.reopenDate)
}
