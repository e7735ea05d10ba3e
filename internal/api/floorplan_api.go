package api

import (
	"net/http"
	"strconv"

	"seatwise/internal/metrics"
	"seatwise/internal/models"
	"seatwise/internal/timewindow"
)

// TableRequest is the request body for creating or editing a table.
type TableRequest struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	MinCapacity int    `json:"min_capacity"`
	MaxCapacity int    `json:"max_capacity"`
	Purpose     string `json:"purpose,omitempty"` // "reservable" (default) or "decorative"
}

// CombinedTableRequest is the request body for creating a combination.
type CombinedTableRequest struct {
	Name        string  `json:"name"`
	MinCapacity int     `json:"min_capacity"`
	MaxCapacity int     `json:"max_capacity"`
	ElementIDs  []int64 `json:"element_ids"`
}

// BlockRequest is the request body for creating an administrative block.
type BlockRequest struct {
	ElementID int64  `json:"element_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
	Notes     string `json:"notes,omitempty"`
}

// ClientRequest is the request body for creating a guest.
type ClientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
}

func (s *HTTPServer) handleShifts(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("shifts")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	shifts, err := s.db.ListShifts(r.Context(), s.restaurantID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shifts": shifts})
}

func (s *HTTPServer) handleTables(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("tables")
	switch r.Method {
	case http.MethodGet:
		elements, err := s.db.ListElements(r.Context(), s.floorplanID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tables": elements})

	case http.MethodPost:
		var req TableRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.MinCapacity < 1 || req.MinCapacity > req.MaxCapacity {
			writeError(w, http.StatusBadRequest, "capacity bounds must satisfy 1 <= min <= max")
			return
		}
		purpose := models.PurposeReservable
		if req.Purpose == string(models.PurposeDecorative) {
			purpose = models.PurposeDecorative
		}
		element := &models.FloorplanElement{
			FloorplanID: s.floorplanID,
			Name:        req.Name,
			MinCapacity: req.MinCapacity,
			MaxCapacity: req.MaxCapacity,
			Purpose:     purpose,
		}
		if req.ID != 0 {
			element.ID = req.ID
			if err := s.db.UpdateElement(r.Context(), element); err != nil {
				s.writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, element)
			return
		}
		id, err := s.db.CreateElement(r.Context(), element)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		element.ID = id
		writeJSON(w, http.StatusCreated, element)

	case http.MethodDelete:
		id, err := queryID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid or missing id")
			return
		}
		if err := s.db.DeleteElement(r.Context(), id); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCombinedTables(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("combined_tables")
	switch r.Method {
	case http.MethodGet:
		tables, err := s.db.ListCombinedTables(r.Context(), s.floorplanID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		type combinedView struct {
			models.CombinedTable
			Members []models.CombinedTableMember `json:"members"`
		}
		views := make([]combinedView, 0, len(tables))
		for _, ct := range tables {
			members, err := s.db.ListMembers(r.Context(), ct.ID)
			if err != nil {
				s.writeDomainError(w, err)
				return
			}
			views = append(views, combinedView{CombinedTable: ct, Members: members})
		}
		writeJSON(w, http.StatusOK, map[string]any{"combined_tables": views})

	case http.MethodPost:
		var req CombinedTableRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(req.ElementIDs) == 0 {
			writeError(w, http.StatusBadRequest, "element_ids must not be empty")
			return
		}
		if req.MinCapacity < 1 || req.MinCapacity > req.MaxCapacity {
			writeError(w, http.StatusBadRequest, "capacity bounds must satisfy 1 <= min <= max")
			return
		}
		ct := &models.CombinedTable{
			FloorplanID: s.floorplanID,
			Name:        req.Name,
			MinCapacity: req.MinCapacity,
			MaxCapacity: req.MaxCapacity,
		}
		id, err := s.db.CreateCombinedTable(r.Context(), ct, req.ElementIDs)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		ct.ID = id
		writeJSON(w, http.StatusCreated, ct)

	case http.MethodDelete:
		id, err := queryID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid or missing id")
			return
		}
		if err := s.db.DeleteCombinedTable(r.Context(), id); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBlocks(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("blocks")
	switch r.Method {
	case http.MethodGet:
		elementID, err := queryID(r, "table_id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid or missing table_id")
			return
		}
		blocks, err := s.db.ListBlocks(r.Context(), elementID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"blocks": blocks})

	case http.MethodPost:
		var req BlockRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		startDate, err := parseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date; expected YYYY-MM-DD")
			return
		}
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date; expected YYYY-MM-DD")
			return
		}
		if startDate.After(endDate) {
			writeError(w, http.StatusBadRequest, "start_date must not be after end_date")
			return
		}
		startTime, err := timewindow.ParseClock(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_time; expected HH:MM")
			return
		}
		endTime, err := timewindow.ParseClock(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_time; expected HH:MM")
			return
		}
		if startTime >= endTime {
			writeError(w, http.StatusBadRequest, "start_time must be before end_time")
			return
		}
		if _, err := s.db.GetElement(r.Context(), req.ElementID); err != nil {
			s.writeDomainError(w, err)
			return
		}
		block := &models.BlockTable{
			ElementID: req.ElementID,
			StartDate: startDate,
			EndDate:   endDate,
			StartTime: startTime,
			EndTime:   endTime,
			Notes:     req.Notes,
		}
		id, err := s.db.CreateBlock(r.Context(), block)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		block.ID = id
		writeJSON(w, http.StatusCreated, block)

	case http.MethodDelete:
		id, err := queryID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid or missing id")
			return
		}
		if err := s.db.DeleteBlock(r.Context(), id); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleClients(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("clients")
	switch r.Method {
	case http.MethodGet:
		id, err := queryID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid or missing id")
			return
		}
		client, err := s.db.GetClient(r.Context(), id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, client)

	case http.MethodPost:
		var req ClientRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.FirstName == "" || req.Phone == "" {
			writeError(w, http.StatusBadRequest, "first_name and phone are required")
			return
		}
		client := &models.Client{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Email:     req.Email,
		}
		id, err := s.db.CreateClient(r.Context(), client)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		client.ID = id
		writeJSON(w, http.StatusCreated, client)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func queryID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
}
