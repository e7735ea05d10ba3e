// Package booking implements the table-assignment and conflict-resolution
// engine: shift validation, block lookups, conflict detection, capacity
// checks and the resolver that orders them into one pipeline.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"seatwise/internal/database"
	"seatwise/internal/metrics"
	"seatwise/internal/models"
	"seatwise/internal/timewindow"
)

// Store is the storage surface the resolver needs. *database.DB satisfies it.
type Store interface {
	ShiftSource
	BlockSource
	ReservationSource
	MemberSource

	GetElement(ctx context.Context, id int64) (*models.FloorplanElement, error)
	GetCombinedTable(ctx context.Context, id int64) (*models.CombinedTable, error)
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	CreateReservation(ctx context.Context, r *models.Reservation) (int64, error)
	UpdateReservationFields(ctx context.Context, r *models.Reservation) error
	UpdateAssignment(ctx context.Context, id int64, a models.TableAssignment, status models.ReservationStatus) error
}

// Resolver runs the assignment pipeline: shift, capacity, block and conflict
// checks in a fixed order, then commits the assignment. All mutations of
// reservation assignment fields go through here.
type Resolver struct {
	store     Store
	shifts    *ShiftValidator
	blocks    *BlockRegistry
	conflicts *ConflictDetector
	locks     *TableLocks
	logger    *zerolog.Logger
}

// NewResolver wires the resolver and its check components over one store.
func NewResolver(store Store, logger *zerolog.Logger) *Resolver {
	return &Resolver{
		store:     store,
		shifts:    NewShiftValidator(store),
		blocks:    NewBlockRegistry(store),
		conflicts: NewConflictDetector(store, store),
		locks:     NewTableLocks(),
		logger:    logger,
	}
}

// Shifts exposes the shift validator for callers that only need lookups.
func (r *Resolver) Shifts() *ShiftValidator { return r.shifts }

// Blocks exposes the block registry for read-only availability queries.
func (r *Resolver) Blocks() *BlockRegistry { return r.blocks }

// CreateReservationRequest carries the inputs of CreateReservation.
type CreateReservationRequest struct {
	RestaurantID int64
	ClientID     *int64
	ShiftID      int64
	Date         time.Time
	Time         timewindow.Clock
	PartySize    int
	DurationText string
	Tags         string
	Notes        string
	TableID      *int64 // optional single table
	Upcoming     bool   // without a table: true => upcoming, false => waitlist
}

// WalkInRequest carries the inputs of CreateWalkIn. The time is always "now"
// in the restaurant's local timezone, supplied explicitly by the caller.
type WalkInRequest struct {
	RestaurantID int64
	ClientID     *int64
	PartySize    int
	DurationText string
	Tags         string
	Notes        string
	TableID      *int64
}

// AssignmentTarget is the exactly-one-of pair of an assignment request.
type AssignmentTarget struct {
	TableID  *int64
	MemberID *int64
}

// UpdateReservationRequest carries the editable fields of a reservation.
type UpdateReservationRequest struct {
	ReservationID int64
	Date          time.Time
	Time          timewindow.Clock
	PartySize     int
	DurationText  string
	Tags          string
	Notes         string
	ClientID      *int64
}

// CreateReservation validates and persists an on-call reservation.
func (r *Resolver) CreateReservation(ctx context.Context, req CreateReservationRequest) (*models.Reservation, error) {
	if req.ClientID != nil {
		if _, err := r.store.GetClient(ctx, *req.ClientID); err != nil {
			return nil, r.reject(mapStoreErr(err, "client", *req.ClientID))
		}
	}
	shift, err := r.shifts.ValidateID(ctx, req.ShiftID)
	if err != nil {
		return nil, r.reject(err)
	}
	if !CheckTimeInShift(req.Time, shift) {
		return nil, r.reject(invalid(ReasonOutsideShift,
			"time %s is outside shift %q (%s-%s)", req.Time, shift.Name, shift.StartTime, shift.EndTime))
	}

	duration := timewindow.ParseDurationText(req.DurationText, r.logger)
	window := timewindow.New(req.Time, duration)

	reservation := &models.Reservation{
		ConfirmationCode: uuid.NewString(),
		RestaurantID:     req.RestaurantID,
		ClientID:         req.ClientID,
		ShiftID:          shift.ID,
		Date:             models.DateOnly(req.Date),
		Time:             req.Time,
		DurationMinutes:  &duration,
		PartySize:        req.PartySize,
		Type:             models.TypeOnCall,
		Assignment:       models.NoAssignment(),
		Tags:             req.Tags,
		Notes:            req.Notes,
	}

	if req.TableID == nil {
		reservation.Status = models.StatusWaitlist
		if req.Upcoming {
			reservation.Status = models.StatusUpcoming
		}
		return r.persistNew(ctx, reservation)
	}

	element, err := r.checkSingleTable(ctx, *req.TableID, req.PartySize)
	if err != nil {
		return nil, r.reject(err)
	}
	release := r.locks.Acquire(element.ID)
	defer release()
	if err := r.checkAvailability(ctx, element.ID, reservation.Date, window, 0); err != nil {
		return nil, r.reject(err)
	}
	reservation.Status = models.StatusSeated
	reservation.Assignment = models.AssignTable(element.ID)
	return r.persistNew(ctx, reservation)
}

// CreateWalkIn validates and persists a walk-in reservation. now must already
// be in the restaurant's local timezone; the shift is auto-selected as the
// one whose window contains now, else the next one still ahead.
func (r *Resolver) CreateWalkIn(ctx context.Context, req WalkInRequest, now time.Time) (*models.Reservation, error) {
	if req.ClientID != nil {
		if _, err := r.store.GetClient(ctx, *req.ClientID); err != nil {
			return nil, r.reject(mapStoreErr(err, "client", *req.ClientID))
		}
	}
	nowClock := timewindow.ClockOf(now)
	shift, err := r.shifts.PickWalkInShift(ctx, req.RestaurantID, nowClock)
	if err != nil {
		return nil, r.reject(err)
	}

	duration := timewindow.ParseDurationText(req.DurationText, r.logger)
	window := timewindow.New(nowClock, duration)

	reservation := &models.Reservation{
		ConfirmationCode: uuid.NewString(),
		RestaurantID:     req.RestaurantID,
		ClientID:         req.ClientID,
		ShiftID:          shift.ID,
		Date:             models.DateOnly(now),
		Time:             nowClock,
		DurationMinutes:  &duration,
		PartySize:        req.PartySize,
		Type:             models.TypeWalkIn,
		Assignment:       models.NoAssignment(),
		Tags:             req.Tags,
		Notes:            req.Notes,
		Status:           models.StatusWaitlist,
	}

	if req.TableID != nil {
		element, err := r.checkSingleTable(ctx, *req.TableID, req.PartySize)
		if err != nil {
			return nil, r.reject(err)
		}
		release := r.locks.Acquire(element.ID)
		defer release()
		if err := r.checkAvailability(ctx, element.ID, reservation.Date, window, 0); err != nil {
			return nil, r.reject(err)
		}
		reservation.Status = models.StatusSeated
		reservation.Assignment = models.AssignTable(element.ID)
	}
	return r.persistNew(ctx, reservation)
}

// AssignTable binds a reservation to exactly one of a single table or a
// combined-table member.
func (r *Resolver) AssignTable(ctx context.Context, reservationID int64, target AssignmentTarget) (*models.Reservation, error) {
	return r.assign(ctx, reservationID, target, false)
}

// UpdateAssignedTable rebinds a reservation to a new target. Before the
// change it reports (as a log warning) whether the existing assignment still
// has live conflicts; the check is advisory, not a precondition.
func (r *Resolver) UpdateAssignedTable(ctx context.Context, reservationID int64, target AssignmentTarget) (*models.Reservation, error) {
	return r.assign(ctx, reservationID, target, true)
}

func (r *Resolver) assign(ctx context.Context, reservationID int64, target AssignmentTarget, auditExisting bool) (*models.Reservation, error) {
	// Exactly-one-of is a request-shape property, rejected before lookups.
	if target.TableID != nil && target.MemberID != nil {
		return nil, r.reject(invalid(ReasonAmbiguousTarget, "request supplies both a table and a combined-table member"))
	}
	if target.TableID == nil && target.MemberID == nil {
		return nil, r.reject(invalid(ReasonNoTarget, "request supplies neither a table nor a combined-table member"))
	}

	reservation, err := r.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, r.reject(mapStoreErr(err, "reservation", reservationID))
	}
	if !reservation.Status.AllowsAssignment() {
		return nil, r.reject(invalid(ReasonStatusLocked,
			"reservation %d has status %s which does not permit (re)assignment", reservationID, reservation.Status))
	}

	// Defense in depth: the stored time must still lie inside the
	// reservation's shift before any new binding.
	shift, err := r.shifts.ValidateID(ctx, reservation.ShiftID)
	if err != nil {
		return nil, r.reject(err)
	}
	if !CheckTimeInShift(reservation.Time, shift) {
		return nil, r.reject(invalid(ReasonOutsideShift,
			"reservation %d time %s is outside shift %q", reservationID, reservation.Time, shift.Name))
	}

	if auditExisting && reservation.Assignment.IsAssigned() {
		r.auditExistingAssignment(ctx, reservation)
	}

	window := reservation.Window()
	var assignment models.TableAssignment

	if target.TableID != nil {
		element, err := r.checkSingleTable(ctx, *target.TableID, reservation.PartySize)
		if err != nil {
			return nil, r.reject(err)
		}
		release := r.locks.Acquire(element.ID)
		defer release()
		if err := r.checkAvailability(ctx, element.ID, reservation.Date, window, reservation.ID); err != nil {
			return nil, r.reject(err)
		}
		assignment = models.AssignTable(element.ID)
	} else {
		member, combined, siblings, err := r.resolveCombination(ctx, *target.MemberID)
		if err != nil {
			return nil, r.reject(err)
		}
		if !CheckCapacity(reservation.PartySize, combined.MinCapacity, combined.MaxCapacity) {
			return nil, r.reject(invalid(ReasonCapacity,
				"party of %d does not fit combined table %q (capacity %d-%d)",
				reservation.PartySize, combined.Name, combined.MinCapacity, combined.MaxCapacity))
		}
		tables := elementIDs(siblings)
		release := r.locks.Acquire(tables...)
		defer release()
		if blocked, err := r.blocks.FindBlocked(ctx, tables, reservation.Date, window); err != nil {
			return nil, err
		} else if blocked != nil {
			return nil, r.reject(conflict(ReasonBlocked, blocked.ElementID, window,
				"member table %d of combination %q is blocked", blocked.ElementID, combined.Name))
		}
		if hit, err := r.conflicts.FindCombinedConflict(ctx, member.ID, reservation.Date, window, reservation.ID); err != nil {
			return nil, err
		} else if hit != nil {
			return nil, r.reject(conflict(ReasonOverlap, member.ElementID, window,
				"combination %q is held by reservation %d during %s", combined.Name, hit.ID, hit.Window()))
		}
		assignment = models.AssignCombinedMember(member.ID)
	}

	// Committing the union nulls the other leg; single/combined stay
	// mutually exclusive at all times.
	if err := r.store.UpdateAssignment(ctx, reservation.ID, assignment, reservation.Status); err != nil {
		return nil, err
	}
	metrics.IncAssignmentCommitted()
	r.logger.Info().Int64("reservation_id", reservation.ID).Stringer("assignment", assignment).Msg("table assigned")
	return r.store.GetReservation(ctx, reservation.ID)
}

// RemoveTableAssignment clears both assignment legs unconditionally, leaving
// the reservation unassigned.
func (r *Resolver) RemoveTableAssignment(ctx context.Context, reservationID int64) (*models.Reservation, error) {
	reservation, err := r.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, r.reject(mapStoreErr(err, "reservation", reservationID))
	}
	if err := r.store.UpdateAssignment(ctx, reservation.ID, models.NoAssignment(), reservation.Status); err != nil {
		return nil, err
	}
	r.logger.Info().Int64("reservation_id", reservation.ID).Msg("table assignment removed")
	return r.store.GetReservation(ctx, reservation.ID)
}

// UpdateReservation edits a reservation's date, time, party size, duration,
// tags and notes. When a table is held, the new window is re-checked for
// blocks and conflicts on that same table. now must be in the restaurant's
// local timezone.
func (r *Resolver) UpdateReservation(ctx context.Context, req UpdateReservationRequest, now time.Time) (*models.Reservation, error) {
	reservation, err := r.store.GetReservation(ctx, req.ReservationID)
	if err != nil {
		return nil, r.reject(mapStoreErr(err, "reservation", req.ReservationID))
	}
	if models.DateOnly(req.Date).Before(models.DateOnly(now)) {
		return nil, r.reject(invalid(ReasonPastDate, "date %s is in the past", req.Date.Format("2006-01-02")))
	}
	shift, err := r.shifts.ValidateID(ctx, reservation.ShiftID)
	if err != nil {
		return nil, r.reject(err)
	}
	if !CheckTimeInShift(req.Time, shift) {
		return nil, r.reject(invalid(ReasonOutsideShift,
			"time %s is outside shift %q (%s-%s)", req.Time, shift.Name, shift.StartTime, shift.EndTime))
	}
	if req.ClientID != nil {
		if _, err := r.store.GetClient(ctx, *req.ClientID); err != nil {
			return nil, r.reject(mapStoreErr(err, "client", *req.ClientID))
		}
	}

	duration := timewindow.ParseDurationText(req.DurationText, r.logger)
	window := timewindow.New(req.Time, duration)
	date := models.DateOnly(req.Date)

	if reservation.Assignment.IsAssigned() {
		tables, err := r.assignmentTables(ctx, reservation.Assignment)
		if err != nil {
			return nil, err
		}
		release := r.locks.Acquire(tables...)
		defer release()

		if blocked, err := r.blocks.FindBlocked(ctx, tables, date, window); err != nil {
			return nil, err
		} else if blocked != nil {
			return nil, r.reject(conflict(ReasonBlocked, blocked.ElementID, window,
				"table %d is blocked during the new window", blocked.ElementID))
		}
		hit, err := r.findConflictForAssignment(ctx, reservation.Assignment, date, window, reservation.ID)
		if err != nil {
			return nil, err
		}
		if hit != nil {
			return nil, r.reject(conflict(ReasonOverlap, tables[0], window,
				"new window collides with reservation %d during %s", hit.ID, hit.Window()))
		}
	}

	reservation.ClientID = pickClient(req.ClientID, reservation.ClientID)
	reservation.Date = date
	reservation.Time = req.Time
	reservation.DurationMinutes = &duration
	reservation.PartySize = req.PartySize
	reservation.Tags = req.Tags
	reservation.Notes = req.Notes

	if err := r.store.UpdateReservationFields(ctx, reservation); err != nil {
		return nil, err
	}
	return r.store.GetReservation(ctx, reservation.ID)
}

// checkSingleTable resolves a table and runs the static gates: it must exist,
// be reservable, and fit the party.
func (r *Resolver) checkSingleTable(ctx context.Context, tableID int64, partySize int) (*models.FloorplanElement, error) {
	element, err := r.store.GetElement(ctx, tableID)
	if err != nil {
		return nil, mapStoreErr(err, "table", tableID)
	}
	if !element.IsReservable() {
		return nil, invalid(ReasonNotReservable, "element %d (%s) is not reservable", element.ID, element.Name)
	}
	if !CheckCapacity(partySize, element.MinCapacity, element.MaxCapacity) {
		return nil, invalid(ReasonCapacity,
			"party of %d does not fit table %d (capacity %d-%d)", partySize, element.ID, element.MinCapacity, element.MaxCapacity)
	}
	return element, nil
}

// checkAvailability runs the dynamic gates for one table: block, then
// conflict. Callers hold the table lock.
func (r *Resolver) checkAvailability(ctx context.Context, tableID int64, date time.Time, w timewindow.Window, excludeID int64) error {
	if blocked, err := r.blocks.FindBlocked(ctx, []int64{tableID}, date, w); err != nil {
		return err
	} else if blocked != nil {
		return conflict(ReasonBlocked, tableID, w, "table %d is blocked: %s", tableID, blocked.Notes)
	}
	hit, err := r.conflicts.FindTableConflict(ctx, tableID, date, w, excludeID)
	if err != nil {
		return err
	}
	if hit != nil {
		return conflict(ReasonOverlap, tableID, w,
			"table %d is held by reservation %d during %s", tableID, hit.ID, hit.Window())
	}
	return nil
}

func (r *Resolver) resolveCombination(ctx context.Context, memberID int64) (*models.CombinedTableMember, *models.CombinedTable, []models.CombinedTableMember, error) {
	member, err := r.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, nil, nil, mapStoreErr(err, "combined table member", memberID)
	}
	combined, err := r.store.GetCombinedTable(ctx, member.CombinedTableID)
	if err != nil {
		return nil, nil, nil, mapStoreErr(err, "combined table", member.CombinedTableID)
	}
	siblings, err := r.store.ListMembers(ctx, combined.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return member, combined, siblings, nil
}

// assignmentTables returns the physical table ids claimed by an assignment.
func (r *Resolver) assignmentTables(ctx context.Context, a models.TableAssignment) ([]int64, error) {
	switch a.Kind {
	case models.AssignmentTable:
		return []int64{a.TableID}, nil
	case models.AssignmentCombinedMember:
		member, err := r.store.GetMember(ctx, a.MemberID)
		if err != nil {
			return nil, mapStoreErr(err, "combined table member", a.MemberID)
		}
		siblings, err := r.store.ListMembers(ctx, member.CombinedTableID)
		if err != nil {
			return nil, err
		}
		return elementIDs(siblings), nil
	default:
		return nil, nil
	}
}

func (r *Resolver) findConflictForAssignment(ctx context.Context, a models.TableAssignment, date time.Time, w timewindow.Window, excludeID int64) (*models.Reservation, error) {
	switch a.Kind {
	case models.AssignmentTable:
		return r.conflicts.FindTableConflict(ctx, a.TableID, date, w, excludeID)
	case models.AssignmentCombinedMember:
		return r.conflicts.FindCombinedConflict(ctx, a.MemberID, date, w, excludeID)
	default:
		return nil, nil
	}
}

// auditExistingAssignment logs whether the current assignment still has a
// live conflict. Reassignment proceeds regardless.
func (r *Resolver) auditExistingAssignment(ctx context.Context, reservation *models.Reservation) {
	hit, err := r.findConflictForAssignment(ctx, reservation.Assignment, reservation.Date, reservation.Window(), reservation.ID)
	if err != nil {
		r.logger.Warn().Err(err).Int64("reservation_id", reservation.ID).Msg("existing assignment audit failed")
		return
	}
	if hit != nil {
		r.logger.Warn().
			Int64("reservation_id", reservation.ID).
			Int64("conflicting_reservation_id", hit.ID).
			Stringer("assignment", reservation.Assignment).
			Msg("existing assignment already has a live conflict")
	}
}

func (r *Resolver) persistNew(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	id, err := r.store.CreateReservation(ctx, reservation)
	if err != nil {
		return nil, err
	}
	metrics.IncReservationCreated(string(reservation.Status))
	r.logger.Info().
		Int64("reservation_id", id).
		Str("status", string(reservation.Status)).
		Stringer("assignment", reservation.Assignment).
		Msg("reservation created")
	return r.store.GetReservation(ctx, id)
}

// reject counts a rejection by reason before returning it. Unexpected errors
// pass through uncounted.
func (r *Resolver) reject(err error) error {
	var invalidErr *InvalidRequestError
	var conflictErr *ConflictError
	var notFoundErr *NotFoundError
	switch {
	case errors.As(err, &invalidErr):
		metrics.IncAssignmentRejected(string(invalidErr.Reason))
	case errors.As(err, &conflictErr):
		metrics.IncAssignmentRejected(string(conflictErr.Reason))
	case errors.As(err, &notFoundErr):
		metrics.IncAssignmentRejected("not_found")
	}
	return err
}

func mapStoreErr(err error, entity string, id int64) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFound(entity, id)
	}
	return err
}

func pickClient(requested, current *int64) *int64 {
	if requested != nil {
		return requested
	}
	return current
}
