package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulsedesk.app/pulse/common/id"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/queue"
	"pulsedesk.app/pulse/internal/service"
)

var _ = Describe("IngestService", func() {
	var (
		svc      service.IngestService
		provider *mockStoreProvider
		producer *mockQueueProducer
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = newMockStoreProvider()
		producer = &mockQueueProducer{}

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())

		svc = service.NewIngestService(&mockTxRunner{provider: provider}, producer, nil)
	})

	params := func(mutate func(p *service.IngestParams)) service.IngestParams {
		p := service.IngestParams{
			Source:           model.SourceTeams,
			ThreadExternalID: "t-100",
			ThreadTitle:      strPtr("Platform chat"),
			EventExternalID:  "m-1",
			TS:               time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
			AuthorID:         strPtr("alice@corp.example"),
			Text:             strPtr("hello"),
		}
		if mutate != nil {
			mutate(&p)
		}
		return p
	}

	It("upserts the thread, stores the event and enqueues it", func() {
		result, err := svc.Ingest(ctx, params(nil))

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Deduped).To(BeFalse())
		Expect(result.Enqueued).To(BeTrue())

		Expect(provider.threads.capturedThread).NotTo(BeNil())
		Expect(provider.threads.capturedThread.Source).To(Equal(model.SourceTeams))
		Expect(provider.threads.capturedThread.ExternalID).To(Equal("t-100"))

		Expect(provider.events.capturedEvent).NotTo(BeNil())
		Expect(provider.events.capturedEvent.ExternalID).To(Equal("m-1"))
		Expect(provider.events.capturedEvent.Mentions).To(Equal([]string{}))

		Expect(producer.enqueued).To(HaveLen(1))
		Expect(producer.enqueued[0].EventID).To(Equal(result.Event.ID))
		Expect(producer.enqueued[0].Source).To(Equal(model.SourceTeams))
	})

	It("dedupes replays without enqueueing", func() {
		existing := &model.Event{ID: 777, ThreadID: 10, Source: model.SourceTeams, ExternalID: "m-1"}
		provider.events.createOrGetFn = func(ctx context.Context, event *model.Event) (*model.Event, bool, error) {
			return existing, false, nil
		}

		result, err := svc.Ingest(ctx, params(nil))

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Deduped).To(BeTrue())
		Expect(result.Enqueued).To(BeFalse())
		Expect(result.Event.ID).To(Equal(int64(777)))
		Expect(producer.enqueued).To(BeEmpty())
	})

	It("surfaces the stored event even when enqueue fails", func() {
		producer.enqueueFn = func(ctx context.Context, msg queue.EventMessage) error {
			return errors.New("redis down")
		}

		result, err := svc.Ingest(ctx, params(nil))

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Enqueued).To(BeFalse())
		Expect(result.Deduped).To(BeFalse())
		Expect(result.Event).NotTo(BeNil())
	})

	It("rejects missing external ids", func() {
		_, err := svc.Ingest(ctx, params(func(p *service.IngestParams) {
			p.EventExternalID = ""
		}))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("required"))
	})

	It("rejects a zero timestamp", func() {
		_, err := svc.Ingest(ctx, params(func(p *service.IngestParams) {
			p.TS = time.Time{}
		}))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("ts"))
	})

	It("propagates transaction failures", func() {
		provider.events.createOrGetFn = func(ctx context.Context, event *model.Event) (*model.Event, bool, error) {
			return nil, false, errors.New("constraint violation")
		}

		_, err := svc.Ingest(ctx, params(nil))
		Expect(err).To(HaveOccurred())
		Expect(producer.enqueued).To(BeEmpty())
	})
})
