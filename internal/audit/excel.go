// Package audit exports reservation history as Excel workbooks for the
// restaurant's back office.
package audit

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"seatwise/internal/database"
	"seatwise/internal/models"
)

var exportColumns = []string{
	"ID", "Date", "Time", "Duration (min)", "Status", "Type",
	"Party", "Client", "Phone", "Table", "Confirmation", "Notes",
}

// Exporter builds reservation workbooks from the database.
type Exporter struct {
	db     *database.DB
	logger *zerolog.Logger
}

func NewExporter(db *database.DB, logger *zerolog.Logger) *Exporter {
	return &Exporter{db: db, logger: logger}
}

// WriteRange writes all reservations with dates in [from, to] as a single
// workbook to w.
func (e *Exporter) WriteRange(ctx context.Context, restaurantID int64, from, to time.Time, w io.Writer) error {
	reservations, err := e.db.ListByDateRange(ctx, restaurantID, from, to)
	if err != nil {
		return fmt.Errorf("list reservations: %w", err)
	}

	book := newWorkbook()
	defer func() { _ = book.Close() }()

	sheetName := fmt.Sprintf("%s - %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err := book.addSheet(sheetName); err != nil {
		return err
	}
	if err := book.writeHeader(exportColumns); err != nil {
		return err
	}
	for i := range reservations {
		if err := book.writeRow(e.exportRow(ctx, &reservations[i])); err != nil {
			return err
		}
	}
	return book.save(w)
}

func (e *Exporter) exportRow(ctx context.Context, res *models.Reservation) []any {
	w := res.Window()
	return []any{
		res.ID,
		res.Date.Format("2006-01-02"),
		w.Start.String(),
		res.EffectiveDuration(),
		string(res.Status),
		string(res.Type),
		res.PartySize,
		e.clientName(ctx, res),
		e.clientPhone(ctx, res),
		e.tableLabel(ctx, res),
		res.ConfirmationCode,
		res.Notes,
	}
}

func (e *Exporter) clientName(ctx context.Context, res *models.Reservation) string {
	if res.ClientID == nil {
		return ""
	}
	client, err := e.db.GetClient(ctx, *res.ClientID)
	if err != nil {
		return ""
	}
	return client.FullName()
}

func (e *Exporter) clientPhone(ctx context.Context, res *models.Reservation) string {
	if res.ClientID == nil {
		return ""
	}
	client, err := e.db.GetClient(ctx, *res.ClientID)
	if err != nil {
		return ""
	}
	return client.Phone
}

func (e *Exporter) tableLabel(ctx context.Context, res *models.Reservation) string {
	switch res.Assignment.Kind {
	case models.AssignmentTable:
		element, err := e.db.GetElement(ctx, res.Assignment.TableID)
		if err != nil {
			return fmt.Sprintf("table %d", res.Assignment.TableID)
		}
		return element.Name
	case models.AssignmentCombinedMember:
		member, err := e.db.GetMember(ctx, res.Assignment.MemberID)
		if err != nil {
			return fmt.Sprintf("combined member %d", res.Assignment.MemberID)
		}
		combined, err := e.db.GetCombinedTable(ctx, member.CombinedTableID)
		if err != nil {
			return fmt.Sprintf("combined %d", member.CombinedTableID)
		}
		return combined.Name
	default:
		return ""
	}
}

// workbook is a thin cursor over an excelize file. Rows are written top to
// bottom on the current sheet.
type workbook struct {
	file       *excelize.File
	sheet      string
	currentRow int
}

func newWorkbook() *workbook {
	return &workbook{file: excelize.NewFile()}
}

func (b *workbook) addSheet(name string) error {
	// Excel caps sheet names at 31 chars.
	if len(name) > 31 {
		name = name[:31]
	}
	if b.sheet == "" {
		b.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := b.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	b.sheet = name
	b.currentRow = 1
	return nil
}

func (b *workbook) writeHeader(columns []string) error {
	if err := b.writeRow(anySlice(columns)); err != nil {
		return err
	}
	style, err := b.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = b.file.SetCellStyle(b.sheet, startCell, endCell, style)
	}
	return nil
}

func (b *workbook) writeRow(row []any) error {
	if b.sheet == "" {
		return fmt.Errorf("no active sheet")
	}
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, b.currentRow)
		if err != nil {
			return err
		}
		if err := b.file.SetCellValue(b.sheet, cell, val); err != nil {
			return err
		}
	}
	b.currentRow++
	return nil
}

func (b *workbook) save(w io.Writer) error {
	return b.file.Write(w)
}

func (b *workbook) Close() error {
	return b.file.Close()
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
