package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatwise/internal/booking"
	"seatwise/internal/database"
	"seatwise/internal/models"
)

type testServer struct {
	server  *HTTPServer
	handler http.Handler
	db      *database.DB

	shiftID int64
	table1  int64
	table2  int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	ts := &testServer{db: db}

	ts.shiftID, err = db.CreateShift(ctx, &models.Shift{
		RestaurantID: 1, Name: "dinner", StartTime: 18 * 60, EndTime: 23 * 60,
	})
	require.NoError(t, err)

	ts.table1, err = db.CreateElement(ctx, &models.FloorplanElement{
		FloorplanID: 1, Name: "T1", MinCapacity: 2, MaxCapacity: 4, Purpose: models.PurposeReservable,
	})
	require.NoError(t, err)
	ts.table2, err = db.CreateElement(ctx, &models.FloorplanElement{
		FloorplanID: 1, Name: "T2", MinCapacity: 2, MaxCapacity: 4, Purpose: models.PurposeReservable,
	})
	require.NoError(t, err)

	resolver := booking.NewResolver(db, &logger)
	ts.server = NewHTTPServer(db, resolver, 1, 1, time.UTC, "", &logger)
	ts.server.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	ts.handler = ts.server.Handler()
	return ts
}

func (ts *testServer) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) ReservationView {
	t.Helper()
	var view ReservationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestCreateReservationEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/reservations", CreateReservationRequest{
		ShiftID: ts.shiftID, Date: "2026-09-15", Time: "19:00", PartySize: 2, Duration: "2h",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	view := decodeView(t, rec)
	assert.Equal(t, "waitlist", view.Status)
	assert.Equal(t, "19:00", view.Time)
	assert.Equal(t, 120, view.DurationMinutes)
	assert.Equal(t, "dinner", view.ShiftName)
	assert.NotEmpty(t, view.ConfirmationCode)
}

func TestCreateReservationValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body CreateReservationRequest
		code int
	}{
		{"bad date", CreateReservationRequest{ShiftID: 1, Date: "soon", Time: "19:00", PartySize: 2}, http.StatusBadRequest},
		{"bad time", CreateReservationRequest{ShiftID: 1, Date: "2026-09-15", Time: "late", PartySize: 2}, http.StatusBadRequest},
		{"outside shift", CreateReservationRequest{ShiftID: ts.shiftID, Date: "2026-09-15", Time: "10:00", PartySize: 2}, http.StatusBadRequest},
		{"unknown shift", CreateReservationRequest{ShiftID: 999, Date: "2026-09-15", Time: "19:00", PartySize: 2}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.request(t, http.MethodPost, "/api/reservations", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/reservations",
		bytes.NewReader([]byte(`{"shift_id":1,"date":"2026-09-15","time":"19:00","party_size":2,"surprise":true}`)))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConflictReturns409(t *testing.T) {
	ts := newTestServer(t)

	body := CreateReservationRequest{
		ShiftID: ts.shiftID, Date: "2026-09-15", Time: "19:00", PartySize: 2, Duration: "2h", TableID: &ts.table1,
	}
	rec := ts.request(t, http.MethodPost, "/api/reservations", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body.Time = "19:30"
	rec = ts.request(t, http.MethodPost, "/api/reservations", body)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestAssignFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/reservations", CreateReservationRequest{
		ShiftID: ts.shiftID, Date: "2026-09-15", Time: "19:00", PartySize: 2, Duration: "2h",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeView(t, rec)

	rec = ts.request(t, http.MethodPost, "/api/reservations/assign", AssignRequest{
		ReservationID: created.ID, TableID: &ts.table1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assigned := decodeView(t, rec)
	require.NotNil(t, assigned.TableID)
	assert.Equal(t, ts.table1, *assigned.TableID)
	assert.Equal(t, "T1", assigned.TableName)

	// Both targets at once is ambiguous.
	member := int64(1)
	rec = ts.request(t, http.MethodPost, "/api/reservations/assign", AssignRequest{
		ReservationID: created.ID, TableID: &ts.table1, CombinedMemberID: &member,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/reservations/reassign", AssignRequest{
		ReservationID: created.ID, TableID: &ts.table2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decodeView(t, rec)
	require.NotNil(t, moved.TableID)
	assert.Equal(t, ts.table2, *moved.TableID)

	rec = ts.request(t, http.MethodPost, "/api/reservations/unassign", AssignRequest{ReservationID: created.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cleared := decodeView(t, rec)
	assert.Nil(t, cleared.TableID)
	assert.Nil(t, cleared.CombinedMemberID)
}

func TestListReservationsByDate(t *testing.T) {
	ts := newTestServer(t)

	for _, at := range []string{"18:00", "20:00"} {
		rec := ts.request(t, http.MethodPost, "/api/reservations", CreateReservationRequest{
			ShiftID: ts.shiftID, Date: "2026-09-15", Time: at, PartySize: 2,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := ts.request(t, http.MethodGet, "/api/reservations?date=2026-09-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Reservations []ReservationView `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Reservations, 2)

	rec = ts.request(t, http.MethodGet, "/api/reservations?date=2026-09-16", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Empty(t, payload.Reservations)
}

func TestWalkInEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.server.now = func() time.Time { return time.Date(2026, 9, 15, 19, 0, 0, 0, time.UTC) }

	rec := ts.request(t, http.MethodPost, "/api/reservations/walk-in", WalkInRequest{PartySize: 2, TableID: &ts.table1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeView(t, rec)
	assert.Equal(t, "seated", view.Status)
	assert.Equal(t, "walk_in", view.Type)
	assert.Equal(t, "19:00", view.Time)
}

func TestAPIKeyAuth(t *testing.T) {
	ts := newTestServer(t)
	ts.server.apiKey = "sekret"
	handler := ts.server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/shifts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/shifts", nil)
	req.Header.Set("X-API-Key", "sekret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAvailabilityGrid(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/reservations", CreateReservationRequest{
		ShiftID: ts.shiftID, Date: "2026-09-15", Time: "19:00", PartySize: 2, Duration: "2h",
		TableID: &ts.table1, Upcoming: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	_, err := ts.db.CreateBlock(context.Background(), &models.BlockTable{
		ElementID: ts.table2,
		StartDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime: 18 * 60, EndTime: 20 * 60,
	})
	require.NoError(t, err)

	rec = ts.request(t, http.MethodGet, "/api/availability?date=2026-09-15", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var grid AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grid))
	require.Len(t, grid.Tables, 2)

	byID := map[int64]TableAvailability{}
	for _, table := range grid.Tables {
		byID[table.TableID] = table
	}
	require.Len(t, byID[ts.table1].Busy, 1)
	assert.Equal(t, "reserved", byID[ts.table1].Busy[0].Reason)
	assert.Equal(t, "19:00", byID[ts.table1].Busy[0].Start)
	assert.Equal(t, "21:00", byID[ts.table1].Busy[0].End)
	require.Len(t, byID[ts.table2].Busy, 1)
	assert.Equal(t, "blocked", byID[ts.table2].Busy[0].Reason)
}

func TestAvailabilityCacheInvalidation(t *testing.T) {
	ts := newTestServer(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ts.server.UseRedisCache(client, time.Minute)

	rec := ts.request(t, http.MethodGet, "/api/availability?date=2026-09-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	key := fmt.Sprintf("availability:1:%s", "2026-09-15")
	assert.True(t, mr.Exists(key), "first read should populate the cache")

	rec = ts.request(t, http.MethodPost, "/api/reservations", CreateReservationRequest{
		ShiftID: ts.shiftID, Date: "2026-09-15", Time: "19:00", PartySize: 2, Duration: "2h",
		TableID: &ts.table1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, mr.Exists(key), "a mutation must drop the cached grid")

	rec = ts.request(t, http.MethodGet, "/api/availability?date=2026-09-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var grid AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grid))
	byID := map[int64]TableAvailability{}
	for _, table := range grid.Tables {
		byID[table.TableID] = table
	}
	assert.Len(t, byID[ts.table1].Busy, 1, "rebuilt grid reflects the new reservation")
}

func TestTablesEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Tables []models.FloorplanElement `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Tables, 2)
}

func TestExportEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/reservations", CreateReservationRequest{
		ShiftID: ts.shiftID, Date: "2026-09-15", Time: "19:00", PartySize: 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/export?from=2026-09-01&to=2026-09-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())

	rec = ts.request(t, http.MethodGet, "/api/export?from=2026-09-30&to=2026-09-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
