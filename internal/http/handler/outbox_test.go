package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulsedesk.app/pulse/internal/http/handler"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/store"
)

var _ = Describe("OutboxHandler", func() {
	var (
		router *gin.Engine
		outbox *mockOutboxStore
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		outbox = &mockOutboxStore{}
		h := handler.NewOutboxHandler(outbox)
		router.GET("/admin/outbox", h.List)
		router.POST("/admin/outbox/:id/confirm", h.Confirm)
		router.POST("/admin/outbox/:id/retry", h.Retry)
		router.POST("/admin/outbox/:id/cancel", h.Cancel)
	})

	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("List", func() {
		It("passes the status filter through", func() {
			var gotStatus *model.OutboxStatus
			outbox.listFn = func(ctx context.Context, status *model.OutboxStatus, limit int32) ([]model.Outbox, error) {
				gotStatus = status
				Expect(limit).To(Equal(int32(100)))
				return []model.Outbox{{ID: 1, Type: model.OutboxTypeTelegramNotify, Status: model.OutboxStatusFailed}}, nil
			}

			w := do(http.MethodGet, "/admin/outbox?status=FAILED")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotStatus).NotTo(BeNil())
			Expect(*gotStatus).To(Equal(model.OutboxStatusFailed))
		})

		It("rejects an unknown status filter", func() {
			w := do(http.MethodGet, "/admin/outbox?status=SHIPPED")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Confirm", func() {
		It("returns the confirmed record", func() {
			outbox.confirmFn = func(ctx context.Context, id int64, at time.Time) (*model.Outbox, error) {
				return &model.Outbox{ID: id, Status: model.OutboxStatusConfirmed}, nil
			}

			w := do(http.MethodPost, "/admin/outbox/7/confirm")

			Expect(w.Code).To(Equal(http.StatusOK))
			var rec model.Outbox
			Expect(json.Unmarshal(w.Body.Bytes(), &rec)).To(Succeed())
			Expect(rec.Status).To(Equal(model.OutboxStatusConfirmed))
		})

		It("maps a missing record to 404", func() {
			w := do(http.MethodPost, "/admin/outbox/7/confirm")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("maps an ineligible status to 409", func() {
			outbox.confirmFn = func(ctx context.Context, id int64, at time.Time) (*model.Outbox, error) {
				return nil, store.ErrInvalidTransition
			}
			w := do(http.MethodPost, "/admin/outbox/7/confirm")
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("rejects a non-numeric id", func() {
			w := do(http.MethodPost, "/admin/outbox/abc/confirm")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Retry", func() {
		It("resets a failed record to pending", func() {
			outbox.retryFn = func(ctx context.Context, id int64) (*model.Outbox, error) {
				return &model.Outbox{ID: id, Status: model.OutboxStatusPending}, nil
			}

			w := do(http.MethodPost, "/admin/outbox/9/retry")

			Expect(w.Code).To(Equal(http.StatusOK))
			var rec model.Outbox
			Expect(json.Unmarshal(w.Body.Bytes(), &rec)).To(Succeed())
			Expect(rec.Status).To(Equal(model.OutboxStatusPending))
		})

		It("refuses to retry a sent record", func() {
			outbox.retryFn = func(ctx context.Context, id int64) (*model.Outbox, error) {
				return nil, store.ErrInvalidTransition
			}
			w := do(http.MethodPost, "/admin/outbox/9/retry")
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("Cancel", func() {
		It("cancels a pending record", func() {
			outbox.cancelFn = func(ctx context.Context, id int64) (*model.Outbox, error) {
				return &model.Outbox{ID: id, Status: model.OutboxStatusCanceled}, nil
			}

			w := do(http.MethodPost, "/admin/outbox/3/cancel")

			Expect(w.Code).To(Equal(http.StatusOK))
			var rec model.Outbox
			Expect(json.Unmarshal(w.Body.Bytes(), &rec)).To(Succeed())
			Expect(rec.Status).To(Equal(model.OutboxStatusCanceled))
		})
	})
})
