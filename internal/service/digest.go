package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pulsedesk.app/pulse/common/id"
	"pulsedesk.app/pulse/common/logger"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/store"
)

const (
	digestLineMax = 240
	digestDocMax  = 2000
)

// DigestService renders one markdown rollup per thread per day.
type DigestService interface {
	// BuildForDate digests events with ts in [date, date+24h) for every
	// thread. date must be a UTC midnight.
	BuildForDate(ctx context.Context, date time.Time) error
	// RunDaily digests the preceding UTC day.
	RunDaily(ctx context.Context) error
}

type digestService struct {
	threads  store.ThreadStore
	events   store.EventStore
	txRunner TxRunner
	logger   *slog.Logger
}

func NewDigestService(threads store.ThreadStore, events store.EventStore, txRunner TxRunner, logger *slog.Logger) DigestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &digestService{
		threads:  threads,
		events:   events,
		txRunner: txRunner,
		logger:   logger,
	}
}

func (s *digestService) RunDaily(ctx context.Context) error {
	now := time.Now().UTC()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return s.BuildForDate(ctx, date)
}

func (s *digestService) BuildForDate(ctx context.Context, date time.Time) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pulse.digest"})

	from := date
	to := date.Add(24 * time.Hour)

	threadIDs, err := s.threads.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing threads: %w", err)
	}

	built := 0
	for _, threadID := range threadIDs {
		events, err := s.events.ListByThreadBetween(ctx, threadID, from, to)
		if err != nil {
			return fmt.Errorf("listing events for thread %d: %w", threadID, err)
		}
		if len(events) == 0 {
			continue
		}

		contentMD := renderDigest(date, events)
		now := time.Now().UTC()

		if err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
			if _, err := sp.Digests().Upsert(ctx, &model.DailyDigest{
				ID:        id.New(),
				ThreadID:  threadID,
				Date:      date,
				ContentMD: contentMD,
			}); err != nil {
				return fmt.Errorf("upserting digest: %w", err)
			}
			if err := sp.Threads().UpdateSummary(ctx, threadID, contentMD, now); err != nil {
				return fmt.Errorf("updating thread summary: %w", err)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("saving digest for thread %d: %w", threadID, err)
		}
		built++
	}

	s.logger.InfoContext(ctx, "daily digests built", "date", date.Format("2006-01-02"), "threads", built)
	return nil
}

type digestBucket struct {
	title string
	badge string
	match func(e *model.Event) bool
}

// Buckets are exclusive, first match wins.
var digestBuckets = []digestBucket{
	{"Top", "⭐", func(e *model.Event) bool { return e.IsFromTop }},
	{"Sales/Incidents", "💡", func(e *model.Event) bool { return e.SalesSignal }},
	{"DM/Email", "✉️", func(e *model.Event) bool { return e.IsDM }},
	{"Mentions", "@", func(e *model.Event) bool { return e.HasMention != nil && *e.HasMention }},
	{"Other", "•", func(e *model.Event) bool { return true }},
}

// renderDigest is deterministic: identical events produce byte-identical
// markdown.
func renderDigest(date time.Time, events []model.Event) string {
	lines := make([][]string, len(digestBuckets))
	for i := range events {
		e := &events[i]
		for b, bucket := range digestBuckets {
			if bucket.match(e) {
				// Truncation caps the text alone; badge and author ride on top.
				text := truncate(collapseWhitespace(e.Body()), digestLineMax)
				lines[b] = append(lines[b], fmt.Sprintf("%s %s: %s", bucket.badge, e.Author(), text))
				break
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "### Daily digest (%s)\n", date.Format("2006-01-02"))
	for b, bucket := range digestBuckets {
		if len(lines[b]) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n**%s**\n", bucket.title)
		for _, line := range lines[b] {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return truncate(sb.String(), digestDocMax)
}
