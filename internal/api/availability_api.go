package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"seatwise/internal/metrics"
	"seatwise/internal/models"
)

// BusyInterval is one occupied stretch of a table's day.
type BusyInterval struct {
	Start         string `json:"start"` // HH:MM
	End           string `json:"end"`   // HH:MM
	Reason        string `json:"reason"` // "reserved", "combined", "blocked"
	ReservationID int64  `json:"reservation_id,omitempty"`
}

// TableAvailability is one table's schedule for the requested day.
type TableAvailability struct {
	TableID int64          `json:"table_id"`
	Name    string         `json:"name"`
	Busy    []BusyInterval `json:"busy"`
}

// AvailabilityResponse is the response for GET /api/availability.
type AvailabilityResponse struct {
	Date   string              `json:"date"`
	Tables []TableAvailability `json:"tables"`
}

// handleAvailability returns the per-table busy grid for one day. Responses
// are cached in redis for a short TTL and invalidated on every mutation of
// the day.
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	cacheKey := s.availabilityKey(date)
	var cached AvailabilityResponse
	if s.readCache(r.Context(), cacheKey, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	response, err := s.buildAvailability(r.Context(), date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeCache(r.Context(), cacheKey, response)
	writeJSON(w, http.StatusOK, response)
}

func (s *HTTPServer) buildAvailability(ctx context.Context, date time.Time) (*AvailabilityResponse, error) {
	elements, err := s.db.ListElements(ctx, s.floorplanID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.db.ListByDate(ctx, s.restaurantID, date)
	if err != nil {
		return nil, err
	}

	busyByTable := make(map[int64][]BusyInterval)
	for i := range reservations {
		res := &reservations[i]
		if !res.Status.IsActive() {
			continue
		}
		w := res.Window()
		switch res.Assignment.Kind {
		case models.AssignmentTable:
			busyByTable[res.Assignment.TableID] = append(busyByTable[res.Assignment.TableID], BusyInterval{
				Start: w.Start.String(), End: w.End().String(), Reason: "reserved", ReservationID: res.ID,
			})
		case models.AssignmentCombinedMember:
			// A combined booking occupies every member's physical table.
			member, err := s.db.GetMember(ctx, res.Assignment.MemberID)
			if err != nil {
				continue
			}
			siblings, err := s.db.ListMembers(ctx, member.CombinedTableID)
			if err != nil {
				continue
			}
			for _, sibling := range siblings {
				busyByTable[sibling.ElementID] = append(busyByTable[sibling.ElementID], BusyInterval{
					Start: w.Start.String(), End: w.End().String(), Reason: "combined", ReservationID: res.ID,
				})
			}
		}
	}

	tables := make([]TableAvailability, 0, len(elements))
	for _, element := range elements {
		if !element.IsReservable() {
			continue
		}
		busy := busyByTable[element.ID]
		blocks, err := s.db.ListBlocksForElements(ctx, []int64{element.ID}, date)
		if err != nil {
			return nil, err
		}
		for _, b := range blocks {
			if !b.CoversDate(date) {
				continue
			}
			busy = append(busy, BusyInterval{
				Start: b.StartTime.String(), End: b.EndTime.String(), Reason: "blocked",
			})
		}
		tables = append(tables, TableAvailability{TableID: element.ID, Name: element.Name, Busy: busy})
	}

	return &AvailabilityResponse{Date: date.Format("2006-01-02"), Tables: tables}, nil
}

func (s *HTTPServer) availabilityKey(date time.Time) string {
	return fmt.Sprintf("availability:%d:%s", s.restaurantID, date.Format("2006-01-02"))
}

// invalidateAvailability drops the cached grid for a day after any mutation.
func (s *HTTPServer) invalidateAvailability(ctx context.Context, date time.Time) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.availabilityKey(date)).Err(); err != nil {
		s.logger.Debug().Err(err).Msg("availability cache invalidation failed")
	}
}

func (s *HTTPServer) readCache(ctx context.Context, key string, dst any) bool {
	if s.redis == nil || s.cacheTTL <= 0 {
		return false
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *HTTPServer) writeCache(ctx context.Context, key string, value any) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("availability cache write failed")
	}
}
