package handler_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulsedesk.app/pulse/internal/http/handler"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/service"
	"pulsedesk.app/pulse/internal/signature"
)

const ingestSecret = "webhook-secret"

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(ingestSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

var _ = Describe("IngestHandler", func() {
	var (
		router *gin.Engine
		svc    *mockIngestService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockIngestService{}
		h := handler.NewIngestHandler(svc, signature.NewVerifier(ingestSecret), "X-Trace-Id")
		router.POST("/ingest/:source", h.Ingest)
	})

	validBody := func() []byte {
		body, _ := json.Marshal(map[string]any{
			"threadExternalId": "t-100",
			"eventExternalId":  "m-1",
			"ts":               "2026-08-30T09:00:00Z",
			"authorId":         "alice@corp.example",
			"text":             "hello",
		})
		return body
	}

	post := func(source string, body []byte, sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/ingest/"+source, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if sig != "" {
			req.Header.Set("X-Signature", sig)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("accepts a signed valid payload", func() {
		body := validBody()
		w := post("teams", body, signBody(body))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["ok"]).To(BeTrue())
		Expect(resp["eventId"]).To(BeNumerically("==", 42))

		Expect(svc.capturedParams).NotTo(BeNil())
		Expect(svc.capturedParams.Source).To(Equal(model.SourceTeams))
		Expect(svc.capturedParams.ThreadExternalID).To(Equal("t-100"))
	})

	It("accepts the GitHub-style signature header", func() {
		body := validBody()
		req := httptest.NewRequest(http.MethodPost, "/ingest/outlook", bytes.NewReader(body))
		req.Header.Set("X-Hub-Signature-256", signBody(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.capturedParams.Source).To(Equal(model.SourceOutlook))
	})

	It("rejects a missing signature with 401", func() {
		w := post("teams", validBody(), "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(svc.capturedParams).To(BeNil())
	})

	It("rejects a wrong signature with 401", func() {
		w := post("teams", validBody(), "sha256=deadbeef")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(svc.capturedParams).To(BeNil())
	})

	It("rejects an unknown source with 400 after signature passes", func() {
		body := validBody()
		w := post("slack", body, signBody(body))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(svc.capturedParams).To(BeNil())
	})

	It("reports field issues for an incomplete payload", func() {
		body, _ := json.Marshal(map[string]any{
			"threadExternalId": "t-100",
			"ts":               "not-a-timestamp",
		})
		w := post("teams", body, signBody(body))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		var resp struct {
			Issues []struct {
				Field string `json:"field"`
			} `json:"issues"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		fields := []string{}
		for _, issue := range resp.Issues {
			fields = append(fields, issue.Field)
		}
		Expect(fields).To(ConsistOf("eventExternalId", "ts"))
	})

	It("marks replays as deduped", func() {
		svc.ingestFn = func(ctx context.Context, params service.IngestParams) (*service.IngestResult, error) {
			return &service.IngestResult{
				Thread:  &model.Thread{ID: 10},
				Event:   &model.Event{ID: 42},
				Deduped: true,
			}, nil
		}

		body := validBody()
		w := post("teams", body, signBody(body))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["deduped"]).To(BeTrue())
	})

	It("returns 500 when the service fails", func() {
		svc.ingestFn = func(ctx context.Context, params service.IngestParams) (*service.IngestResult, error) {
			return nil, errors.New("database unavailable")
		}

		body := validBody()
		w := post("teams", body, signBody(body))
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
