// Package remind sends pre-arrival reminders for upcoming reservations to
// the restaurant's staff channel.
package remind

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"seatwise/internal/database"
	"seatwise/internal/metrics"
	"seatwise/internal/models"
)

// Notifier delivers a reminder message to staff.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// TelegramNotifier sends reminders to a single staff chat, rate limited to
// stay under Telegram's per-chat message quota.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}

// Scheduler periodically finds reservations starting within the lead window
// and sends one reminder each.
type Scheduler struct {
	db           *database.DB
	notifier     Notifier
	restaurantID int64
	location     *time.Location
	leadMinutes  int
	interval     time.Duration
	logger       *zerolog.Logger

	now func() time.Time
}

func NewScheduler(db *database.DB, notifier Notifier, restaurantID int64, location *time.Location, leadMinutes int, interval time.Duration, logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		db:           db,
		notifier:     notifier,
		restaurantID: restaurantID,
		location:     location,
		leadMinutes:  leadMinutes,
		interval:     interval,
		logger:       logger,
		now:          time.Now,
	}
}

// Run blocks until ctx is cancelled, checking for due reminders every
// interval.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().
		Int("lead_minutes", s.leadMinutes).
		Dur("interval", s.interval).
		Msg("reminder scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().In(s.location)
	fromMinute := now.Hour()*60 + now.Minute()
	toMinute := fromMinute + s.leadMinutes
	if toMinute > 1439 {
		toMinute = 1439
	}

	due, err := s.db.ListDueReminders(ctx, s.restaurantID, now, fromMinute, toMinute)
	if err != nil {
		s.logger.Error().Err(err).Msg("list due reminders")
		return
	}

	for i := range due {
		res := &due[i]
		if err := s.notifier.Notify(ctx, s.message(ctx, res)); err != nil {
			s.logger.Error().Err(err).Int64("reservation_id", res.ID).Msg("reminder delivery failed")
			continue
		}
		if err := s.db.MarkReminderSent(ctx, res.ID); err != nil {
			s.logger.Error().Err(err).Int64("reservation_id", res.ID).Msg("mark reminder sent")
			continue
		}
		metrics.IncReminderSent()
		s.logger.Info().Int64("reservation_id", res.ID).Msg("reminder sent")
	}
}

func (s *Scheduler) message(ctx context.Context, res *models.Reservation) string {
	name := "guest"
	if res.ClientID != nil {
		if client, err := s.db.GetClient(ctx, *res.ClientID); err == nil && client.FullName() != "" {
			name = client.FullName()
		}
	}
	w := res.Window()
	return fmt.Sprintf("Upcoming: %s, party of %d at %s (code %s)",
		name, res.PartySize, w.Start.String(), res.ConfirmationCode)
}
