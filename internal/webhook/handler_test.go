package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakeWebhookConfig struct {
	verifyToken string
	appSecret   string
	accessToken string
}

func (f fakeWebhookConfig) GetMetaVerifyToken() string  { return f.verifyToken }
func (f fakeWebhookConfig) GetMetaAppSecret() string    { return f.appSecret }
func (f fakeWebhookConfig) GetMetaAccessToken() string  { return f.accessToken }
func (f fakeWebhookConfig) GetMetaGraphBaseURL() string { return "https://graph.example.com/v19.0" }

func newTestHandler(ingestor *fakeIngestor, cfg fakeWebhookConfig) *Handler {
	svc := NewService(ingestor, nil, testLogger())
	return NewHandler(svc, cfg, testLogger())
}

func TestHandleMetaVerify(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(&fakeIngestor{}, fakeWebhookConfig{verifyToken: "secret-token"})

	r := gin.New()
	r.GET("/webhook/meta", h.HandleMetaVerify)

	t.Run("valid token echoes challenge", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/webhook/meta?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if w.Body.String() != "12345" {
			t.Errorf("body = %q, want the challenge echoed", w.Body.String())
		}
	})

	t.Run("wrong token forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/webhook/meta?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("wrong mode forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/webhook/meta?hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

func TestHandleContactForm(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(ingestor *fakeIngestor) *gin.Engine {
		h := newTestHandler(ingestor, fakeWebhookConfig{})
		r := gin.New()
		r.OPTIONS("/webhook/contact", h.HandleContactOptions)
		r.POST("/webhook/contact", h.HandleContactForm)
		return r
	}

	t.Run("preflight", func(t *testing.T) {
		r := newRouter(&fakeIngestor{})
		req := httptest.NewRequest(http.MethodOptions, "/webhook/contact", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
	})

	t.Run("created", func(t *testing.T) {
		r := newRouter(&fakeIngestor{created: true})
		body := `{"fullName":"Anita Desai","email":"anita@example.com","subject":"Chatbot","message":"AI chatbot needed"}`
		req := httptest.NewRequest(http.MethodPost, "/webhook/contact", strings.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
		}
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if resp["success"] != true || resp["leadId"] == "" {
			t.Errorf("response = %v", resp)
		}
	})

	t.Run("duplicate returns 200", func(t *testing.T) {
		r := newRouter(&fakeIngestor{created: false})
		body := `{"fullName":"Anita Desai","email":"anita@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/webhook/contact", strings.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), msgLeadExists) {
			t.Errorf("body = %s, want duplicate message", w.Body.String())
		}
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		ingestor := &fakeIngestor{}
		r := newRouter(ingestor)
		req := httptest.NewRequest(http.MethodPost, "/webhook/contact", strings.NewReader(`{"email":"x@example.com"}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if len(ingestor.intakes) != 0 {
			t.Error("ingest must not run on invalid input")
		}
	})
}

func TestHandlePartnerLead(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("created", func(t *testing.T) {
		h := newTestHandler(&fakeIngestor{created: true}, fakeWebhookConfig{})
		r := gin.New()
		r.POST("/webhooks/leads", h.HandlePartnerLead)

		body := `{"firstName":"Ravi","lastName":"Kumar","email":"ravi@example.com","sourceType":"Meta"}`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/leads", strings.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
		}
	})

	t.Run("duplicate returns 200", func(t *testing.T) {
		h := newTestHandler(&fakeIngestor{created: false}, fakeWebhookConfig{})
		r := gin.New()
		r.POST("/webhooks/leads", h.HandlePartnerLead)

		body := `{"firstName":"Ravi","lastName":"Kumar","email":"ravi@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/leads", strings.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), msgLeadExists) {
			t.Errorf("body = %s", w.Body.String())
		}
	})
}
