package service_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulsedesk.app/pulse/common/id"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/service"
)

var _ = Describe("DigestService", func() {
	var (
		svc      service.DigestService
		provider *mockStoreProvider
		ctx      context.Context
		date     time.Time
	)

	boolPtr := func(b bool) *bool { return &b }

	BeforeEach(func() {
		ctx = context.Background()
		provider = newMockStoreProvider()
		date = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())

		svc = service.NewDigestService(
			provider.threads,
			provider.events,
			&mockTxRunner{provider: provider},
			nil,
		)
	})

	dayEvents := func() []model.Event {
		at := func(h int) time.Time { return date.Add(time.Duration(h) * time.Hour) }
		return []model.Event{
			{ID: 1, ThreadID: 10, TS: at(9), AuthorName: strPtr("Boss"), Text: strPtr("where are we on the rfp?"), IsFromTop: true, SalesSignal: true},
			{ID: 2, ThreadID: 10, TS: at(10), AuthorName: strPtr("Ops"), Text: strPtr("outage in prod"), SalesSignal: true},
			{ID: 3, ThreadID: 10, TS: at(11), AuthorName: strPtr("Alice"), Text: strPtr("got a minute?"), IsDM: true},
			{ID: 4, ThreadID: 10, TS: at(12), AuthorName: strPtr("Carol"), Text: strPtr("@me review please"), HasMention: boolPtr(true)},
			{ID: 5, ThreadID: 10, TS: at(13), AuthorName: strPtr("Dave"), Text: strPtr("lunch?")},
		}
	}

	serveThread := func(events []model.Event) {
		provider.threads.listIDsFn = func(ctx context.Context) ([]int64, error) {
			return []int64{10}, nil
		}
		provider.events.listBetweenFn = func(ctx context.Context, threadID int64, from, to time.Time) ([]model.Event, error) {
			Expect(from).To(Equal(date))
			Expect(to).To(Equal(date.Add(24 * time.Hour)))
			return events, nil
		}
	}

	It("buckets events exclusively, first match wins", func() {
		serveThread(dayEvents())

		Expect(svc.BuildForDate(ctx, date)).To(Succeed())

		Expect(provider.digests.capturedDigest).NotTo(BeNil())
		md := provider.digests.capturedDigest.ContentMD

		Expect(md).To(HavePrefix("### Daily digest (2026-08-30)\n"))
		Expect(md).To(ContainSubstring("**Top**\n⭐ Boss: where are we on the rfp?\n"))
		Expect(md).To(ContainSubstring("**Sales/Incidents**\n💡 Ops: outage in prod\n"))
		Expect(md).To(ContainSubstring("**DM/Email**\n✉️ Alice: got a minute?\n"))
		Expect(md).To(ContainSubstring("**Mentions**\n@ Carol: @me review please\n"))
		Expect(md).To(ContainSubstring("**Other**\n• Dave: lunch?\n"))

		// Boss matched Top and must not reappear under Sales/Incidents.
		Expect(strings.Count(md, "Boss")).To(Equal(1))
	})

	It("is deterministic for identical inputs", func() {
		serveThread(dayEvents())
		Expect(svc.BuildForDate(ctx, date)).To(Succeed())
		first := provider.digests.capturedDigest.ContentMD

		Expect(svc.BuildForDate(ctx, date)).To(Succeed())
		Expect(provider.digests.capturedDigest.ContentMD).To(Equal(first))
	})

	It("updates the thread summary alongside the digest row", func() {
		serveThread(dayEvents())

		var summary string
		provider.threads.updateSummaryFn = func(ctx context.Context, id int64, contentMD string, at time.Time) error {
			Expect(id).To(Equal(int64(10)))
			summary = contentMD
			return nil
		}

		Expect(svc.BuildForDate(ctx, date)).To(Succeed())
		Expect(summary).To(Equal(provider.digests.capturedDigest.ContentMD))
	})

	It("skips threads with no events that day", func() {
		serveThread(nil)

		Expect(svc.BuildForDate(ctx, date)).To(Succeed())
		Expect(provider.digests.capturedDigest).To(BeNil())
		Expect(provider.threads.summaryCalls).To(BeZero())
	})

	It("collapses whitespace and truncates long lines", func() {
		long := strings.Repeat("status ", 100)
		serveThread([]model.Event{
			{ID: 1, ThreadID: 10, TS: date.Add(time.Hour), AuthorName: strPtr("Eve"), Text: strPtr("a\n\n  b\tc " + long)},
		})

		Expect(svc.BuildForDate(ctx, date)).To(Succeed())
		md := provider.digests.capturedDigest.ContentMD

		Expect(md).To(ContainSubstring("• Eve: a b c status"))
	})

	It("caps the line text at 240 characters, badge and author excluded", func() {
		serveThread([]model.Event{
			{ID: 1, ThreadID: 10, TS: date.Add(time.Hour), AuthorName: strPtr("Eve"), Text: strPtr(strings.Repeat("s", 300))},
		})

		Expect(svc.BuildForDate(ctx, date)).To(Succeed())
		md := provider.digests.capturedDigest.ContentMD

		Expect(md).To(ContainSubstring("• Eve: " + strings.Repeat("s", 239) + "…\n"))
	})

	It("hard-caps the document at 2000 characters", func() {
		var events []model.Event
		for i := int64(0); i < 40; i++ {
			events = append(events, model.Event{
				ID: i, ThreadID: 10, TS: date.Add(time.Hour),
				AuthorName: strPtr("Bot"), Text: strPtr(strings.Repeat("z", 200)),
			})
		}
		serveThread(events)

		Expect(svc.BuildForDate(ctx, date)).To(Succeed())
		md := []rune(provider.digests.capturedDigest.ContentMD)
		Expect(len(md)).To(Equal(2000))
		Expect(string(md[len(md)-1])).To(Equal("…"))
	})
})
