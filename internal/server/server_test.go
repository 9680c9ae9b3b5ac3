package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/institute-portal/internal/admission"
	"github.com/jonathan/institute-portal/internal/assist"
	"github.com/jonathan/institute-portal/internal/catalog"
	"github.com/jonathan/institute-portal/internal/chat"
	"github.com/jonathan/institute-portal/internal/config"
	"github.com/jonathan/institute-portal/internal/enrollment"
	"github.com/jonathan/institute-portal/internal/knowledge"
	"github.com/jonathan/institute-portal/internal/leads"
	"github.com/jonathan/institute-portal/internal/logging"
	"github.com/jonathan/institute-portal/internal/payment"
	"github.com/jonathan/institute-portal/internal/resume"
	"github.com/jonathan/institute-portal/internal/server/middleware"
	"github.com/jonathan/institute-portal/internal/server/ratelimit"
	"github.com/jonathan/institute-portal/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	server  *Server
	handler http.Handler
	blobs   *admission.MemoryStore
	members *enrollment.MemoryRecorder
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()
	logger := logging.Discard()

	kb, err := knowledge.Default()
	require.NoError(t, err)
	courses, err := catalog.Default()
	require.NoError(t, err)

	chatStore := session.NewStore[chat.Conversation](session.Options{TTL: time.Hour})
	t.Cleanup(chatStore.Stop)
	draftStore := session.NewStore[resume.Draft](session.Options{TTL: time.Hour})
	t.Cleanup(draftStore.Stop)

	members := enrollment.NewMemoryRecorder()
	enroll := enrollment.NewService(courses, members, logger)
	blobs := admission.NewMemoryStore()

	cfg := Config{
		Auth:     middleware.NewJWTVerifier(config.IdentityConfig{Secret: testSecret}),
		Currency: "inr",
		Logger:   logger,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	s := New(cfg, Services{
		Chat:       chat.NewService(chat.NewEngine(kb), chatStore, leads.NewLogSink(logger), logger),
		Resumes:    resume.NewService(draftStore, nil, logger),
		Courses:    courses,
		Enrollment: enroll,
		Payments:   payment.NewService(payment.SimulatedGateway{}, payment.NewMemoryRepository(), enroll, logger),
		Admissions: admission.NewService(blobs, nil, logger),
		Assist:     assist.NewService(nil, logger),
	})
	t.Cleanup(s.Close)

	return &testEnv{server: s, handler: s.Handler(), blobs: blobs, members: members}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Email: subject + "@example.com",
		Name:  "Test User",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestUnknownRouteAndMethod(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", decode[ErrorBody](t, rec).Error)

	rec = env.do(t, http.MethodDelete, "/health", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	t.Run("preflight", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := httptest.NewRequest(http.MethodOptions, "/chat/sessions", nil)
		req.Header.Set("Origin", "https://example.edu")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("listed origins only", func(t *testing.T) {
		env := newTestEnv(t, func(c *Config) { c.AllowedOrigins = []string{"https://example.edu"} })

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://example.edu")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, "https://example.edu", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))

		req = httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec = httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(c *Config) {
		c.RateLimit = ratelimit.Config{Enabled: true, DefaultLimit: 2, DefaultWindow: time.Hour}
	})

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/courses", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := env.do(t, http.MethodGet, "/courses", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decode[map[string]any](t, rec)["error"])
}

func TestChatFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/chat/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	started := decode[ChatResponse](t, rec)
	assert.Empty(t, started.Conversation.Messages)
	assert.False(t, started.Conversation.CanGoBack)

	base := "/chat/sessions/" + started.ID.String()
	rec = env.do(t, http.MethodPost, base+"/open", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	opened := decode[ChatResponse](t, rec)
	require.NotEmpty(t, opened.Conversation.Messages)
	require.NotEmpty(t, opened.Conversation.Questions)

	question := opened.Conversation.Questions[0]
	rec = env.do(t, http.MethodPost, base+"/questions", SelectQuestionRequest{ID: question.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	answered := decode[ChatResponse](t, rec)
	assert.Greater(t, len(answered.Conversation.Messages), len(opened.Conversation.Messages))
	assert.True(t, answered.Conversation.CanGoBack)

	rec = env.do(t, http.MethodPost, base+"/back", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	back := decode[ChatResponse](t, rec)
	require.NotNil(t, back.Changed)
	assert.True(t, *back.Changed)
	assert.Len(t, back.Conversation.Messages, len(opened.Conversation.Messages))

	rec = env.do(t, http.MethodGet, base, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		field  string
	}{
		{"bad id", http.MethodGet, "/chat/sessions/not-a-uuid", nil, http.StatusBadRequest, "id"},
		{"unknown session", http.MethodGet, "/chat/sessions/" + uuid.NewString(), nil, http.StatusNotFound, ""},
		{"missing question id", http.MethodPost, "/chat/sessions/" + uuid.NewString() + "/questions", SelectQuestionRequest{}, http.StatusBadRequest, "id"},
		{"unknown field", http.MethodPost, "/chat/sessions/" + uuid.NewString() + "/messages", map[string]string{"message": "hi"}, http.StatusBadRequest, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body, "")
			assert.Equal(t, tt.status, rec.Code)
			body := decode[ErrorBody](t, rec)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.field, body.Field)
		})
	}
}

func TestResumeFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/resumes", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[DraftResponse](t, rec)
	base := "/resumes/" + created.ID.String()

	doc := created.Draft.Document
	doc.Personal.Name = "Asha Rao"
	doc.Personal.Email = "asha@example.com"
	doc.Skills = "Go, SQL"
	rec = env.do(t, http.MethodPut, base+"/document", doc, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, base+"/sections/experience/entries", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[DraftResponse](t, rec).Draft.Document.Experience, 1)

	rec = env.do(t, http.MethodDelete, base+"/sections/experience/entries/0", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[DraftResponse](t, rec).Draft.Document.Experience)

	rec = env.do(t, http.MethodPost, base+"/sections/bogus/entries", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/preview", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Asha Rao")

	rec = env.do(t, http.MethodPost, base+"/generate?format=tex", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Asha Rao")

	rec = env.do(t, http.MethodPost, base+"/generate?format=docx", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/resume-templates", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[[]resume.Layout](t, rec))
}

func TestDraftSummary_Disabled(t *testing.T) {
	env := newTestEnv(t, nil)
	created := decode[DraftResponse](t, env.do(t, http.MethodPost, "/resumes", nil, ""))

	rec := env.do(t, http.MethodPost, "/resumes/"+created.ID.String()+"/assist/summary", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCourses(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/courses", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]catalog.Course](t, rec)
	require.NotEmpty(t, all)

	rec = env.do(t, http.MethodGet, "/courses?category="+all[0].Category, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range decode[[]catalog.Course](t, rec) {
		assert.Equal(t, all[0].Category, c.Category)
	}

	rec = env.do(t, http.MethodGet, "/courses?category=astrology", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = env.do(t, http.MethodGet, "/courses/"+all[0].ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, all[0].Title, decode[catalog.Course](t, rec).Title)

	rec = env.do(t, http.MethodGet, "/courses/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSession(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/session", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":null,"isLoading":false}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/session", nil, signToken(t, "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SessionResponse](t, rec)
	require.NotNil(t, resp.User)
	assert.Equal(t, "user-1", resp.User.ID)
}

func TestEnroll(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/courses/data-analytics/enroll", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := signToken(t, "user-1")
	rec = env.do(t, http.MethodPost, "/courses/data-analytics/enroll", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EnrollResponse](t, rec)
	assert.True(t, resp.Enrolled)
	assert.Equal(t, "data-analytics", resp.Course.ID)
	assert.Equal(t, []string{"data-analytics"}, env.members.Enrolled("user-1"))

	rec = env.do(t, http.MethodPost, "/courses/nope/enroll", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthenticatedRoutes_NoVerifier(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.Auth = nil })

	rec := env.do(t, http.MethodPost, "/payments/orders", CreateOrderRequest{Amount: 100}, "whatever")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/session", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPaymentFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, "user-1")

	rec := env.do(t, http.MethodPost, "/payments/orders", CreateOrderRequest{CourseID: "data-analytics"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[payment.Order](t, rec)
	assert.Equal(t, payment.StatusCreated, order.Status)
	assert.Equal(t, int64(4999900), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.True(t, strings.HasPrefix(order.Receipt, "rcpt_"))

	base := "/payments/orders/" + order.ID

	rec = env.do(t, http.MethodGet, base, nil, signToken(t, "user-2"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/failure", PaymentFailureRequest{Code: "BAD_REQUEST_ERROR", Description: "card declined"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, payment.StatusFailed, decode[payment.Order](t, rec).Status)

	rec = env.do(t, http.MethodPost, base+"/success", PaymentSuccessRequest{PaymentID: "pay_123"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	paid := decode[payment.Order](t, rec)
	assert.Equal(t, payment.StatusPaid, paid.Status)
	assert.Equal(t, "pay_123", paid.PaymentID)
	assert.True(t, env.members.IsMember("user-1"))

	rec = env.do(t, http.MethodPost, base+"/failure", PaymentFailureRequest{Code: "X"}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, base, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payment.StatusPaid, decode[payment.Order](t, rec).Status)
}

func TestCreateOrder_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, "user-1")

	rec := env.do(t, http.MethodPost, "/payments/orders", CreateOrderRequest{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/payments/orders", CreateOrderRequest{CourseID: "nope"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/payments/orders/"+uuid.NewString()+"/success", PaymentSuccessRequest{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func admissionRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admissions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAdmissions(t *testing.T) {
	fields := map[string]string{
		"name":    "Asha Rao",
		"email":   "asha@example.com",
		"phone":   "+91 98765-43210",
		"college": "City College",
	}

	t.Run("accepted", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := admissionRequest(t, fields, map[string][]byte{
			admission.FieldBonafide: pngHeader,
			admission.FieldAadhaar:  pngHeader,
		})
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.True(t, decode[admission.Result](t, rec).OK)
		assert.Equal(t, 2, env.blobs.Len())
	})

	t.Run("missing document", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := admissionRequest(t, fields, map[string][]byte{admission.FieldBonafide: pngHeader})
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		result := decode[admission.Result](t, rec)
		assert.False(t, result.OK)
		assert.NotEmpty(t, result.Message)
		assert.Zero(t, env.blobs.Len())
	})

	t.Run("unsupported type", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := admissionRequest(t, fields, map[string][]byte{
			admission.FieldBonafide: []byte("just some text"),
			admission.FieldAadhaar:  pngHeader,
		})
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, env.blobs.Len())
	})
}

func TestClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "203.0.113.7", clientID(req))

	req.RemoteAddr = "unix"
	assert.Equal(t, "unix", clientID(req))
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := fmt.Sprintf(`{"text":%q}`, strings.Repeat("a", 2<<20))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var v SubmitMessageRequest
	err := decodeJSON(httptest.NewRecorder(), req, &v)

	var ve *ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "body", ve.Field)
}
