package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/dynamo"
	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) ConsumeCode(ctx context.Context, userID, code string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, code, updates).Error(0)
}
func (m *mockUserStore) Delete(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Update(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, phone, msg string) error {
	return m.Called(ctx, phone, msg).Error(0)
}

// --- in-memory fakes for multi-step scenarios ---

type memUsers struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]domain.User{}, byEmail: map[string]string{}}
}

func (f *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := f.byID[id]
	return &u, nil
}

func (f *memUsers) Get(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (f *memUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrConflict
	}
	f.byID[u.UserID] = *u
	f.byEmail[u.Email] = u.UserID
	return nil
}

func (f *memUsers) Update(_ context.Context, userID string, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	f.apply(u, updates)
	return nil
}

func (f *memUsers) ConsumeCode(_ context.Context, userID, code string, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok || u.OTP == nil || *u.OTP != code {
		return domain.ErrInvalidOrExpiredCode
	}
	f.apply(u, updates)
	return nil
}

// apply writes updates onto u and stores it. Callers hold f.mu.
func (f *memUsers) apply(u domain.User, updates map[string]interface{}) {
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
				code := v.(string)
				u.OTP = &code
			}
		case dynamo.FieldOTPExpiry:
			if v == nil {
				u.OTPExpiry = nil
			} else {
				exp := v.(time.Time)
				u.OTPExpiry = &exp
			}
		}
	}
	f.byID[u.UserID] = u
}

func (f *memUsers) Delete(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, u.UserID)
	delete(f.byEmail, u.Email)
	return nil
}

type memSessions struct {
	mu   sync.Mutex
	data map[string]domain.Session
}

func newMemSessions() *memSessions {
	return &memSessions{data: map[string]domain.Session{}}
}

func (f *memSessions) Put(_ context.Context, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[s.SessionID] = *s
	return nil
}

func (f *memSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (f *memSessions) Update(_ context.Context, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[s.SessionID]; !ok {
		return domain.ErrNotFound
	}
	f.data[s.SessionID] = *s
	return nil
}

func (f *memSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, id)
	return nil
}

// outbox captures sent codes; fail makes the next sends return an error.
type outbox struct {
	mu   sync.Mutex
	last map[string]string
	fail bool
}

func newOutbox() *outbox { return &outbox{last: map[string]string{}} }

func (o *outbox) SendEmail(to, _, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return errors.New("smtp: connection refused")
	}
	o.last[to] = body[strings.LastIndex(body, " ")+1:]
	return nil
}

func (o *outbox) code(to string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last[to]
}

func (o *outbox) setFail(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fail = v
}
