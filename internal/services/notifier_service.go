package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/wooglin/roster-api/internal/constants"
	"github.com/wooglin/roster-api/internal/metrics"
	"github.com/wooglin/roster-api/internal/notify"
	"github.com/wooglin/roster-api/internal/repository"
	"go.uber.org/zap"
)

// Paging results as recorded in metrics and in PageResult.
const (
	PageSent    = "sent"
	PageFailed  = "failed"
	PageSkipped = "skipped"
	PageDryRun  = "dry_run"
)

// PageResult is the outcome of paging a single shift.
type PageResult struct {
	ShiftID uint64
	Title   string
	Result  string
	Message string
}

// NotifierService pages the sober bros of shifts about to begin.
type NotifierService struct {
	shifts   *ShiftService
	notifier notify.Notifier
	deduper  notify.Deduper
	metrics  *metrics.Metrics
	logger   *zap.Logger
	channel  string
}

// NewNotifierService creates a new NotifierService. A nil deduper pages
// every upcoming shift on every run.
func NewNotifierService(
	shifts *ShiftService,
	notifier notify.Notifier,
	deduper notify.Deduper,
	m *metrics.Metrics,
	logger *zap.Logger,
	channel string,
) *NotifierService {
	if deduper == nil {
		deduper = notify.NoopDeduper{}
	}
	return &NotifierService{
		shifts:   shifts,
		notifier: notifier,
		deduper:  deduper,
		metrics:  m,
		logger:   logger,
		channel:  channel,
	}
}

// PageUpcoming sends one message per upcoming shift. A failed send is
// logged and counted, and the run continues with the next shift. With
// dryRun the messages are built but neither claimed nor sent.
func (s *NotifierService) PageUpcoming(ctx context.Context, dryRun bool) ([]PageResult, error) {
	upcoming, err := s.shifts.Upcoming()
	if err != nil {
		return nil, err
	}

	results := make([]PageResult, 0, len(upcoming))
	for _, item := range upcoming {
		message := s.BuildMessage(item)
		res := PageResult{ShiftID: item.Shift.ID, Title: item.Shift.Title, Message: message}

		switch {
		case dryRun:
			res.Result = PageDryRun
		default:
			res.Result = s.page(ctx, item, message)
			s.metrics.ObserveNotification(res.Result)
		}
		results = append(results, res)
	}

	return results, nil
}

func (s *NotifierService) page(ctx context.Context, item repository.ShiftWithMembers, message string) string {
	log := s.logger.With(zap.Uint64("shift_id", item.Shift.ID))

	claimed, err := s.deduper.Claim(ctx, fmt.Sprintf("shift:%d", item.Shift.ID))
	if err != nil {
		log.Error("Failed to claim shift page", zap.Error(err))
		return PageFailed
	}
	if !claimed {
		log.Info("Shift already paged")
		return PageSkipped
	}

	ok, raw, err := s.notifier.SendMessage(ctx, message, s.channel, []notify.Block{notify.SectionBlock(message)})
	if err != nil || !ok {
		log.Error("Failed to page shift", zap.Error(err), zap.Any("response", raw))
		return PageFailed
	}

	log.Info("Paged shift", zap.Int("brothers", len(item.Members)))
	return PageSent
}

// BuildMessage renders the page for a shift in Slack markdown.
func (s *NotifierService) BuildMessage(item repository.ShiftWithMembers) string {
	loc := s.shifts.Location()
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* starts at %s and ends at %s.\n",
		item.Shift.Title,
		item.Shift.TimeStart.In(loc).Format(constants.ClockLayout),
		item.Shift.TimeEnd.In(loc).Format(constants.ClockLayout))

	if len(item.Members) == 0 {
		b.WriteString("No sober bros are signed up for this shift.")
		return b.String()
	}

	b.WriteString("Sober bros on duty:")
	for _, m := range item.Members {
		fmt.Fprintf(&b, "\n• %s (%s)", m.Name, m.Phone)
	}
	return b.String()
}
