package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulsedesk.app/pulse/common/id"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/service"
	"pulsedesk.app/pulse/internal/store"
)

var _ = Describe("PipelineService", func() {
	var (
		svc       service.PipelineService
		provider  *mockStoreProvider
		configTop *mockConfigTopStore
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = newMockStoreProvider()
		configTop = &mockConfigTopStore{}

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())

		svc = service.NewPipelineService(
			provider.events,
			&mockTxRunner{provider: provider},
			service.NewClassifyService(configTop),
			nil,
		)
	})

	storedEvent := func(mutate func(e *model.Event)) *model.Event {
		e := &model.Event{
			ID:         42,
			ThreadID:   10,
			Source:     model.SourceTeams,
			ExternalID: "m-42",
			TS:         time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC),
			AuthorID:   strPtr("boss@corp.example"),
			AuthorName: strPtr("Boss"),
			Text:       strPtr("need the numbers today"),
		}
		if mutate != nil {
			mutate(e)
		}
		return e
	}

	serveEvent := func(e *model.Event) {
		provider.events.getByIDFn = func(ctx context.Context, id int64) (*model.Event, error) {
			if id == e.ID {
				return e, nil
			}
			return nil, store.ErrNotFound
		}
	}

	It("is a no-op for a missing event", func() {
		Expect(svc.ProcessEvent(ctx, 999)).To(Succeed())
		Expect(provider.events.analysisCalls).To(BeZero())
		Expect(provider.outbox.created).To(BeEmpty())
	})

	Context("TOP_PING events", func() {
		BeforeEach(func() {
			configTop.matchesAnyFn = func(ctx context.Context, source model.Source, identities []string) (bool, error) {
				return true, nil
			}
		})

		It("writes a telegram outbox record with author-prefixed text", func() {
			serveEvent(storedEvent(nil))

			Expect(svc.ProcessEvent(ctx, 42)).To(Succeed())

			Expect(provider.outbox.created).To(HaveLen(1))
			rec := provider.outbox.created[0]
			Expect(rec.Type).To(Equal(model.OutboxTypeTelegramNotify))
			Expect(*rec.ThreadID).To(Equal(int64(10)))
			Expect(*rec.RelatedEventID).To(Equal(int64(42)))

			var payload model.TelegramPayload
			Expect(json.Unmarshal(rec.Payload, &payload)).To(Succeed())
			Expect(payload.Text).To(Equal("Boss: need the numbers today"))
		})

		It("caps telegram text at 1000 characters", func() {
			long := make([]byte, 3000)
			for i := range long {
				long[i] = 'x'
			}
			serveEvent(storedEvent(func(e *model.Event) {
				e.Text = strPtr(string(long))
			}))

			Expect(svc.ProcessEvent(ctx, 42)).To(Succeed())

			var payload model.TelegramPayload
			Expect(json.Unmarshal(provider.outbox.created[0].Payload, &payload)).To(Succeed())
			runes := []rune(payload.Text)
			Expect(runes).To(HaveLen(1000))
			Expect(string(runes[999])).To(Equal("…"))
		})
	})

	Context("MENTION and DM events", func() {
		It("writes a notion task titled from the text", func() {
			serveEvent(storedEvent(func(e *model.Event) {
				e.Mentions = []string{"me@corp.example"}
			}))

			Expect(svc.ProcessEvent(ctx, 42)).To(Succeed())

			Expect(provider.outbox.created).To(HaveLen(1))
			rec := provider.outbox.created[0]
			Expect(rec.Type).To(Equal(model.OutboxTypeNotionTask))

			var payload model.NotionPayload
			Expect(json.Unmarshal(rec.Payload, &payload)).To(Succeed())
			Expect(payload.Title).To(Equal("Reply: need the numbers today"))
			Expect(payload.Source).To(Equal("TEAMS"))
			Expect(*payload.EventID).To(Equal(int64(42)))
		})

		It("caps the title text at 120 characters, prefix excluded", func() {
			serveEvent(storedEvent(func(e *model.Event) {
				e.IsDM = true
				e.Text = strPtr(strings.Repeat("a", 120))
			}))

			Expect(svc.ProcessEvent(ctx, 42)).To(Succeed())

			var payload model.NotionPayload
			Expect(json.Unmarshal(provider.outbox.created[0].Payload, &payload)).To(Succeed())
			Expect(payload.Title).To(Equal("Reply: " + strings.Repeat("a", 119) + "…"))
			Expect([]rune(payload.Title)).To(HaveLen(127))
		})

		It("falls back to a bare Reply title when text is empty", func() {
			serveEvent(storedEvent(func(e *model.Event) {
				e.IsDM = true
				e.Text = nil
			}))

			Expect(svc.ProcessEvent(ctx, 42)).To(Succeed())

			var payload model.NotionPayload
			Expect(json.Unmarshal(provider.outbox.created[0].Payload, &payload)).To(Succeed())
			Expect(payload.Title).To(Equal("Reply"))
		})
	})

	Context("OTHER events", func() {
		It("creates no outbox record but still advances the cursor", func() {
			serveEvent(storedEvent(nil))

			Expect(svc.ProcessEvent(ctx, 42)).To(Succeed())

			Expect(provider.outbox.created).To(BeEmpty())
			Expect(provider.events.analysisCalls).To(Equal(1))
			Expect(provider.lastSeen.capturedCursor).NotTo(BeNil())
			Expect(provider.lastSeen.capturedCursor.ThreadID).To(Equal(int64(10)))
			Expect(provider.lastSeen.capturedCursor.LastExternalID).To(Equal("m-42"))
		})
	})

	It("propagates persistence failures without acking work it did not do", func() {
		serveEvent(storedEvent(nil))
		provider.events.setAnalysisFn = func(ctx context.Context, id int64, intent model.Intent, hasMention, salesSignal, isFromTop bool, at time.Time) error {
			return errors.New("deadlock detected")
		}

		Expect(svc.ProcessEvent(ctx, 42)).NotTo(Succeed())
	})
})
