// Package sheets mirrors active reservations into a Google Sheets
// spreadsheet so floor managers can watch the day without API access.
package sheets

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"seatwise/internal/database"
	"seatwise/internal/models"
)

const sheetRange = "Reservations!A1"

var headerRow = []any{
	"ID", "Date", "Time", "End", "Status", "Party", "Code", "Notes",
}

// SheetsService rewrites one sheet with the current day's active
// reservations on a fixed interval.
type SheetsService struct {
	svc           *sheetsapi.Service
	db            *database.DB
	spreadsheetID string
	restaurantID  int64
	location      *time.Location
	interval      time.Duration
	logger        *zerolog.Logger

	now func() time.Time
}

func NewSheetsService(ctx context.Context, db *database.DB, credentialsFile, spreadsheetID string, restaurantID int64, location *time.Location, interval time.Duration, logger *zerolog.Logger) (*SheetsService, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	svc, err := sheetsapi.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsService{
		svc:           svc,
		db:            db,
		spreadsheetID: spreadsheetID,
		restaurantID:  restaurantID,
		location:      location,
		interval:      interval,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// Run blocks until ctx is cancelled, syncing once immediately and then on
// every interval.
func (s *SheetsService) Run(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("sheets sync started")

	if err := s.Sync(ctx); err != nil {
		s.logger.Error().Err(err).Msg("sheets sync failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sheets sync stopped")
			return
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				s.logger.Error().Err(err).Msg("sheets sync failed")
			}
		}
	}
}

// Sync replaces the sheet contents with today's active reservations.
func (s *SheetsService) Sync(ctx context.Context) error {
	today := s.now().In(s.location)
	reservations, err := s.db.ListByDate(ctx, s.restaurantID, today)
	if err != nil {
		return fmt.Errorf("list reservations: %w", err)
	}
	active := filterActive(reservations)

	values := make([][]any, 0, len(active)+1)
	values = append(values, headerRow)
	for i := range active {
		values = append(values, reservationRowValues(&active[i]))
	}

	clear := &sheetsapi.ClearValuesRequest{}
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, "Reservations!A:Z", clear).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}
	body := &sheetsapi.ValueRange{Values: values}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, sheetRange, body).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}

	s.logger.Debug().Int("rows", len(active)).Msg("sheets sync complete")
	return nil
}

func filterActive(reservations []models.Reservation) []models.Reservation {
	active := make([]models.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.Status.IsActive() {
			active = append(active, r)
		}
	}
	return active
}

func reservationRowValues(res *models.Reservation) []any {
	w := res.Window()
	return []any{
		res.ID,
		res.Date.Format("2006-01-02"),
		w.Start.String(),
		w.End().String(),
		string(res.Status),
		res.PartySize,
		res.ConfirmationCode,
		res.Notes,
	}
}
