package models

import "fmt"

// AssignmentKind discriminates the table-assignment union.
type AssignmentKind int

const (
	// AssignmentNone means the reservation holds no table (waitlist).
	AssignmentNone AssignmentKind = iota
	// AssignmentTable means the reservation holds a single physical table.
	AssignmentTable
	// AssignmentCombinedMember means the reservation holds one member row of
	// a combined table, which claims every member of that combination.
	AssignmentCombinedMember
)

// TableAssignment is a tagged union: Unassigned | Table(id) | CombinedMember(id).
// The illegal both-set state of the two legacy foreign keys cannot be
// represented.
type TableAssignment struct {
	Kind AssignmentKind
	// TableID is the floorplan element id when Kind == AssignmentTable.
	TableID int64
	// MemberID is the combined-table member id when Kind == AssignmentCombinedMember.
	MemberID int64
}

// NoAssignment returns the unassigned value.
func NoAssignment() TableAssignment {
	return TableAssignment{Kind: AssignmentNone}
}

// AssignTable returns an assignment holding a single table.
func AssignTable(tableID int64) TableAssignment {
	return TableAssignment{Kind: AssignmentTable, TableID: tableID}
}

// AssignCombinedMember returns an assignment holding a combination member.
func AssignCombinedMember(memberID int64) TableAssignment {
	return TableAssignment{Kind: AssignmentCombinedMember, MemberID: memberID}
}

// AssignmentFromColumns rebuilds the union from the two nullable storage
// columns. Both set at once is a data corruption and returns an error.
func AssignmentFromColumns(tableID, memberID *int64) (TableAssignment, error) {
	switch {
	case tableID != nil && memberID != nil:
		return TableAssignment{}, fmt.Errorf("reservation holds both table %d and combined member %d", *tableID, *memberID)
	case tableID != nil:
		return AssignTable(*tableID), nil
	case memberID != nil:
		return AssignCombinedMember(*memberID), nil
	default:
		return NoAssignment(), nil
	}
}

// Columns splits the union back into the two nullable storage columns.
func (a TableAssignment) Columns() (tableID, memberID *int64) {
	switch a.Kind {
	case AssignmentTable:
		id := a.TableID
		return &id, nil
	case AssignmentCombinedMember:
		id := a.MemberID
		return nil, &id
	default:
		return nil, nil
	}
}

// IsAssigned reports whether the reservation holds any table.
func (a TableAssignment) IsAssigned() bool {
	return a.Kind != AssignmentNone
}

func (a TableAssignment) String() string {
	switch a.Kind {
	case AssignmentTable:
		return fmt.Sprintf("table:%d", a.TableID)
	case AssignmentCombinedMember:
		return fmt.Sprintf("member:%d", a.MemberID)
	default:
		return "unassigned"
	}
}
