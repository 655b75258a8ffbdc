package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jobboard-api/internal/config"
	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/jobboard-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory stores ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (m *memUserRepo) find(email string) *domain.User {
	for _, u := range m.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.find(email)
	if u == nil {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) Get(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(u.Email) != nil {
		return domain.ErrConflict
	}
	cp := *u
	m.users[u.UserID] = &cp
	return nil
}

func (m *memUserRepo) Update(_ context.Context, userID string, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	applyUserUpdates(u, updates)
	return nil
}

func (m *memUserRepo) ConsumeCode(_ context.Context, userID, code string, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.OTP == nil || *u.OTP != code {
		return domain.ErrInvalidOrExpiredCode
	}
	applyUserUpdates(u, updates)
	return nil
}

func applyUserUpdates(u *domain.User, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case dynamo.FieldName:
			u.Name = v.(string)
		case dynamo.FieldPhone:
			u.Phone = v.(string)
		case dynamo.FieldRole:
			u.Role = v.(string)
		case dynamo.FieldPasswordHash:
			u.PasswordHash = v.(string)
		case dynamo.FieldIsVerified:
			u.IsVerified = v.(bool)
		case dynamo.FieldOTP:
			if v == nil {
				u.OTP = nil
			} else {
				s := v.(string)
				u.OTP = &s
			}
		case dynamo.FieldOTPExpiry:
			if v == nil {
				u.OTPExpiry = nil
			} else {
				t := v.(time.Time)
				u.OTPExpiry = &t
			}
		}
	}
}

func (m *memUserRepo) Delete(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, u.UserID)
	return nil
}

type memSessionRepo struct {
	mu   sync.Mutex
	data map[string]domain.Session
}

func (m *memSessionRepo) Put(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.SessionID] = *s
	return nil
}

func (m *memSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memSessionRepo) Update(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[s.SessionID]; !ok {
		return domain.ErrNotFound
	}
	m.data[s.SessionID] = *s
	return nil
}

func (m *memSessionRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type captureMailer struct {
	mu   sync.Mutex
	last string
}

func (c *captureMailer) SendEmail(_, _, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = body[strings.LastIndex(body, " ")+1:]
	return nil
}

func (c *captureMailer) code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// --- helpers ---

type testServer struct {
	handler http.Handler
	mail    *captureMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	signer, err := jwtinfra.NewProvider([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	mail := &captureMailer{}
	cfg := &config.Config{
		AllowedOrigins:    []string{"http://localhost:5173"},
		SessionCookieName: "sid",
		SessionTTL:        24 * time.Hour,
		OTPTTL:            10 * time.Minute,
		BcryptCost:        4,
	}
	h := NewRouter(ctx, cfg, &Deps{
		UserRepo:    &memUserRepo{users: map[string]*domain.User{}},
		SessionRepo: &memSessionRepo{data: map[string]domain.Session{}},
		Mailer:      mail,
		Signer:      signer,
	})
	return &testServer{handler: h, mail: mail}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	return nil
}

func registerAndLogin(t *testing.T, s *testServer, prefix, role string) *http.Cookie {
	t.Helper()
	rr := s.do(t, http.MethodPost, prefix+"/register", map[string]string{
		"name": "Alice", "email": "a@x.com", "phone": "+15551234567", "password": "Secret1!", "role": role,
	}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, prefix+"/verify-otp", map[string]string{"email": "a@x.com", "otp": s.mail.code()}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, prefix+"/login", map[string]string{"email": "a@x.com", "password": "Secret1!"}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	c := sessionCookie(rr)
	require.NotNil(t, c)
	return c
}

// --- tests ---

func TestRouter_RegisterVerifyLoginDashboard(t *testing.T) {
	s := newTestServer(t)
	cookie := registerAndLogin(t, s, "", domain.RoleClient)

	rr := s.do(t, http.MethodGet, "/dashboard", nil, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Welcome to the dashboard, Alice")

	rr = s.do(t, http.MethodGet, "/client-dashboard", nil, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Welcome to the Client dashboard, Alice")
}

func TestRouter_ClientOnWorkerDashboardIsForbidden(t *testing.T) {
	s := newTestServer(t)
	cookie := registerAndLogin(t, s, "", domain.RoleClient)

	rr := s.do(t, http.MethodGet, "/worker-dashboard", nil, cookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_NoCookieIsUnauthorized(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/dashboard", "/leader-dashboard", "/api/auth/dashboard"} {
		rr := s.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
	rr := s.do(t, http.MethodPost, "/logout", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_APIPrefixAlias(t *testing.T) {
	s := newTestServer(t)
	cookie := registerAndLogin(t, s, "/api/auth", domain.RoleLeader)

	rr := s.do(t, http.MethodGet, "/api/auth/leader-dashboard", nil, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_UpdateProfileResyncsSession(t *testing.T) {
	s := newTestServer(t)
	cookie := registerAndLogin(t, s, "", domain.RoleClient)

	rr := s.do(t, http.MethodGet, "/worker-dashboard", nil, cookie)
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodPut, "/update-profile", map[string]string{"role": domain.RoleWorker}, cookie)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/worker-dashboard", nil, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_LogoutEndsSession(t *testing.T) {
	s := newTestServer(t)
	cookie := registerAndLogin(t, s, "", domain.RoleClient)

	rr := s.do(t, http.MethodPost, "/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/dashboard", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "old cookie must not revive the session")
}

func TestRouter_HealthCheck(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodGet, "/health-check/ping", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
