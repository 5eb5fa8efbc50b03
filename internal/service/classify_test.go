package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/service"
)

func strPtr(s string) *string { return &s }

var _ = Describe("ClassifyService", func() {
	var (
		svc       service.ClassifyService
		configTop *mockConfigTopStore
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		configTop = &mockConfigTopStore{}
		svc = service.NewClassifyService(configTop)
	})

	newEvent := func(mutate func(e *model.Event)) *model.Event {
		e := &model.Event{
			ID:         1,
			ThreadID:   10,
			Source:     model.SourceTeams,
			ExternalID: "m-1",
			AuthorID:   strPtr("alice@corp.example"),
			AuthorName: strPtr("Alice"),
			Text:       strPtr("weekly sync notes"),
		}
		if mutate != nil {
			mutate(e)
		}
		return e
	}

	Describe("intent priority", func() {
		It("TOP_PING wins over DM and mentions", func() {
			configTop.matchesAnyFn = func(ctx context.Context, source model.Source, identities []string) (bool, error) {
				return true, nil
			}
			verdict, err := svc.Classify(ctx, newEvent(func(e *model.Event) {
				e.IsDM = true
				e.Mentions = []string{"bob@corp.example"}
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(verdict.Intent).To(Equal(model.IntentTopPing))
			Expect(verdict.IsFromTop).To(BeTrue())
			Expect(verdict.HasMention).To(BeTrue())
		})

		It("DM wins over mentions", func() {
			verdict, err := svc.Classify(ctx, newEvent(func(e *model.Event) {
				e.IsDM = true
				e.Mentions = []string{"bob@corp.example"}
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(verdict.Intent).To(Equal(model.IntentDM))
		})

		It("mentions rank above other", func() {
			verdict, err := svc.Classify(ctx, newEvent(func(e *model.Event) {
				e.Mentions = []string{"bob@corp.example"}
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(verdict.Intent).To(Equal(model.IntentMention))
		})

		It("falls through to OTHER", func() {
			verdict, err := svc.Classify(ctx, newEvent(nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(verdict.Intent).To(Equal(model.IntentOther))
			Expect(verdict.HasMention).To(BeFalse())
		})
	})

	Describe("top identity matching", func() {
		It("matches on author id or author name for the event's source", func() {
			var gotSource model.Source
			var gotIdentities []string
			configTop.matchesAnyFn = func(ctx context.Context, source model.Source, identities []string) (bool, error) {
				gotSource = source
				gotIdentities = identities
				return false, nil
			}

			_, err := svc.Classify(ctx, newEvent(nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(gotSource).To(Equal(model.SourceTeams))
			Expect(gotIdentities).To(Equal([]string{"alice@corp.example", "Alice"}))
		})

		It("skips the lookup fields that are absent", func() {
			var gotIdentities []string
			configTop.matchesAnyFn = func(ctx context.Context, source model.Source, identities []string) (bool, error) {
				gotIdentities = identities
				return false, nil
			}

			_, err := svc.Classify(ctx, newEvent(func(e *model.Event) {
				e.AuthorID = nil
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(gotIdentities).To(Equal([]string{"Alice"}))
		})
	})

	Describe("sales signal", func() {
		DescribeTable("keyword matching is case-insensitive and substring-based",
			func(text string, want bool) {
				verdict, err := svc.Classify(ctx, newEvent(func(e *model.Event) {
					e.Text = &text
				}))
				Expect(err).NotTo(HaveOccurred())
				Expect(verdict.SalesSignal).To(Equal(want))
			},
			Entry("tender", "new tender published", true),
			Entry("RFP uppercase", "please review the RFP", true),
			Entry("outage", "Outage in eu-west", true),
			Entry("sla embedded", "breaching the SLA again", true),
			Entry("incident", "incident postmortem", true),
			Entry("plain chat", "lunch at noon?", false),
			Entry("empty text", "", false),
		)
	})
})
