package api

import (
	"context"
	"net/http"
	"time"

	"seatwise/internal/booking"
	"seatwise/internal/metrics"
	"seatwise/internal/models"
	"seatwise/internal/timewindow"
)

// CreateReservationRequest is the request body for POST /api/reservations.
type CreateReservationRequest struct {
	ClientID  *int64 `json:"client_id,omitempty"`
	ShiftID   int64  `json:"shift_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM
	PartySize int    `json:"party_size"`
	Duration  string `json:"duration,omitempty"`
	Tags      string `json:"tags,omitempty"`
	Notes     string `json:"notes,omitempty"`
	TableID   *int64 `json:"table_id,omitempty"`
	Upcoming  bool   `json:"upcoming"`
}

// WalkInRequest is the request body for POST /api/reservations/walk-in.
type WalkInRequest struct {
	ClientID  *int64 `json:"client_id,omitempty"`
	PartySize int    `json:"party_size"`
	Duration  string `json:"duration,omitempty"`
	Tags      string `json:"tags,omitempty"`
	Notes     string `json:"notes,omitempty"`
	TableID   *int64 `json:"table_id,omitempty"`
}

// AssignRequest is the request body for assign/reassign/unassign.
type AssignRequest struct {
	ReservationID    int64  `json:"reservation_id"`
	TableID          *int64 `json:"table_id,omitempty"`
	CombinedMemberID *int64 `json:"combined_member_id,omitempty"`
}

// UpdateReservationRequest is the request body for POST /api/reservations/update.
type UpdateReservationRequest struct {
	ReservationID int64  `json:"reservation_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PartySize     int    `json:"party_size"`
	Duration      string `json:"duration,omitempty"`
	Tags          string `json:"tags,omitempty"`
	Notes         string `json:"notes,omitempty"`
	ClientID      *int64 `json:"client_id,omitempty"`
}

// ReservationView is the reservation response shape with resolved references.
type ReservationView struct {
	ID               int64  `json:"id"`
	ConfirmationCode string `json:"confirmation_code"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	DurationMinutes  int    `json:"duration_minutes"`
	PartySize        int    `json:"party_size"`
	Status           string `json:"status"`
	Type             string `json:"type"`
	ShiftName        string `json:"shift_name,omitempty"`
	TableID          *int64 `json:"table_id,omitempty"`
	TableName        string `json:"table_name,omitempty"`
	CombinedMemberID *int64 `json:"combined_member_id,omitempty"`
	CombinedName     string `json:"combined_name,omitempty"`
	ClientID         *int64 `json:"client_id,omitempty"`
	ClientName       string `json:"client_name,omitempty"`
	Tags             string `json:"tags,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listReservations(w, r)
	case http.MethodPost:
		s.createReservation(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listReservations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_list")
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}
	reservations, err := s.db.ListByDate(r.Context(), s.restaurantID, date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	views := make([]ReservationView, 0, len(reservations))
	for i := range reservations {
		views = append(views, s.toView(r.Context(), &reservations[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": views})
}

func (s *HTTPServer) createReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_create")
	var req CreateReservationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}
	clockTime, err := timewindow.ParseClock(req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid time; expected HH:MM")
		return
	}

	reservation, err := s.resolver.CreateReservation(r.Context(), booking.CreateReservationRequest{
		RestaurantID: s.restaurantID,
		ClientID:     req.ClientID,
		ShiftID:      req.ShiftID,
		Date:         date,
		Time:         clockTime,
		PartySize:    req.PartySize,
		DurationText: req.Duration,
		Tags:         req.Tags,
		Notes:        req.Notes,
		TableID:      req.TableID,
		Upcoming:     req.Upcoming,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.invalidateAvailability(r.Context(), reservation.Date)
	writeJSON(w, http.StatusCreated, s.toView(r.Context(), reservation))
}

func (s *HTTPServer) handleCreateWalkIn(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("walkin_create")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	var req WalkInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reservation, err := s.resolver.CreateWalkIn(r.Context(), booking.WalkInRequest{
		RestaurantID: s.restaurantID,
		ClientID:     req.ClientID,
		PartySize:    req.PartySize,
		DurationText: req.Duration,
		Tags:         req.Tags,
		Notes:        req.Notes,
		TableID:      req.TableID,
	}, s.localNow())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.invalidateAvailability(r.Context(), reservation.Date)
	writeJSON(w, http.StatusCreated, s.toView(r.Context(), reservation))
}

func (s *HTTPServer) handleAssignTable(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_assign")
	s.assign(w, r, s.resolver.AssignTable)
}

func (s *HTTPServer) handleUpdateAssignedTable(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_reassign")
	s.assign(w, r, s.resolver.UpdateAssignedTable)
}

func (s *HTTPServer) assign(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, booking.AssignmentTarget) (*models.Reservation, error)) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	var req AssignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	reservation, err := op(r.Context(), req.ReservationID, booking.AssignmentTarget{
		TableID:  req.TableID,
		MemberID: req.CombinedMemberID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.invalidateAvailability(r.Context(), reservation.Date)
	writeJSON(w, http.StatusOK, s.toView(r.Context(), reservation))
}

func (s *HTTPServer) handleRemoveAssignment(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_unassign")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	var req AssignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	reservation, err := s.resolver.RemoveTableAssignment(r.Context(), req.ReservationID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.invalidateAvailability(r.Context(), reservation.Date)
	writeJSON(w, http.StatusOK, s.toView(r.Context(), reservation))
}

func (s *HTTPServer) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_update")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	var req UpdateReservationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}
	clockTime, err := timewindow.ParseClock(req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid time; expected HH:MM")
		return
	}

	reservation, err := s.resolver.UpdateReservation(r.Context(), booking.UpdateReservationRequest{
		ReservationID: req.ReservationID,
		Date:          date,
		Time:          clockTime,
		PartySize:     req.PartySize,
		DurationText:  req.Duration,
		Tags:          req.Tags,
		Notes:         req.Notes,
		ClientID:      req.ClientID,
	}, s.localNow())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.invalidateAvailability(r.Context(), reservation.Date)
	writeJSON(w, http.StatusOK, s.toView(r.Context(), reservation))
}

// toView resolves foreign keys into a response shape. Lookup failures leave
// the related field empty rather than failing the whole response.
func (s *HTTPServer) toView(ctx context.Context, reservation *models.Reservation) ReservationView {
	view := ReservationView{
		ID:               reservation.ID,
		ConfirmationCode: reservation.ConfirmationCode,
		Date:             reservation.Date.Format("2006-01-02"),
		Time:             reservation.Time.String(),
		DurationMinutes:  reservation.EffectiveDuration(),
		PartySize:        reservation.PartySize,
		Status:           string(reservation.Status),
		Type:             string(reservation.Type),
		ClientID:         reservation.ClientID,
		Tags:             reservation.Tags,
		Notes:            reservation.Notes,
	}
	if shift, err := s.db.GetShift(ctx, reservation.ShiftID); err == nil {
		view.ShiftName = shift.Name
	}
	if reservation.ClientID != nil {
		if client, err := s.db.GetClient(ctx, *reservation.ClientID); err == nil {
			view.ClientName = client.FullName()
		}
	}
	switch reservation.Assignment.Kind {
	case models.AssignmentTable:
		id := reservation.Assignment.TableID
		view.TableID = &id
		if element, err := s.db.GetElement(ctx, id); err == nil {
			view.TableName = element.Name
		}
	case models.AssignmentCombinedMember:
		id := reservation.Assignment.MemberID
		view.CombinedMemberID = &id
		if member, err := s.db.GetMember(ctx, id); err == nil {
			if combined, err := s.db.GetCombinedTable(ctx, member.CombinedTableID); err == nil {
				view.CombinedName = combined.Name
			}
		}
	}
	return view
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
