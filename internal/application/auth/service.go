package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/dynamo"
	"github.com/jobboard-api/internal/pkg/id"
	"github.com/jobboard-api/internal/pkg/otp"
	pkgtoken "github.com/jobboard-api/internal/pkg/token"
	"github.com/jobboard-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const (
	subjectVerify  = "OTP Verification"
	subjectResend  = "Resend OTP Verification"
	subjectReset   = "Password Reset OTP"
	dummyPassword  = "dummy-password-for-timing"
	defaultOTPTTL  = 10 * time.Minute
	defaultSessTTL = 24 * time.Hour
)

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Session *domain.Session
	User    *domain.User
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) error
	ResendOTP(ctx context.Context, req domain.ResendOTPRequest) error
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sess *domain.Session) error
	RequestPasswordReset(ctx context.Context, req domain.PasswordResetRequest) error
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	UpdateProfile(ctx context.Context, sess *domain.Session, req domain.UpdateProfileRequest) (*domain.Session, *domain.User, error)
	Authenticate(ctx context.Context, sessionID string) (*domain.Session, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	ConsumeCode(ctx context.Context, userID, code string, updates map[string]interface{}) error
	Delete(ctx context.Context, u *domain.User) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, sessionID string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type ServiceDeps struct {
	UserRepo    userStore
	SessionRepo sessionStore
	Mailer      mailer
	SMSSender   smsSender // optional
	BcryptCost  int
	OTPTTL      time.Duration
	SessionTTL  time.Duration
	Now         func() time.Time
}

type service struct {
	users      userStore
	sessions   sessionStore
	mailer     mailer
	sms        smsSender
	bcryptCost int
	otpTTL     time.Duration
	sessionTTL time.Duration
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:      deps.UserRepo,
		sessions:   deps.SessionRepo,
		mailer:     deps.Mailer,
		sms:        deps.SMSSender,
		bcryptCost: deps.BcryptCost,
		otpTTL:     deps.OTPTTL,
		sessionTTL: deps.SessionTTL,
		now:        deps.Now,
	}
	if s.bcryptCost < bcrypt.MinCost || s.bcryptCost > bcrypt.MaxCost {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.otpTTL <= 0 {
		s.otpTTL = defaultOTPTTL
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = defaultSessTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, invalidInput(err)
	}
	if req.Role == "" {
		req.Role = domain.RoleClient
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		return nil, fmt.Errorf("register %q: %w", req.Email, domain.ErrConflict)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, storeErr("register", err)
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	code, expiry, err := s.newCode()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsVerified:   false,
		OTP:          &code,
		OTPExpiry:    &expiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storeErr("register", err)
	}

	if err := s.mailer.SendEmail(u.Email, subjectVerify, "Your OTP is: "+code); err != nil {
		if delErr := s.users.Delete(ctx, u); delErr != nil {
			slog.Error("register: rollback after failed delivery", "user_id", u.UserID, "err", delErr)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	s.mirrorSMS(ctx, u, "Your OTP is: "+code)

	slog.Info("user registered", "user_id", u.UserID, "role", u.Role)
	return u, nil
}

func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) error {
	if err := validate.Struct(&req); err != nil {
		return invalidInput(err)
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return storeErr("verify otp", err)
	}
	if u.IsVerified {
		return fmt.Errorf("verify otp: %w", domain.ErrAlreadyVerified)
	}
	if !otp.Valid(u.OTP, u.OTPExpiry, req.OTP, s.now()) {
		return fmt.Errorf("verify otp: %w", domain.ErrInvalidOrExpiredCode)
	}
	err = s.users.ConsumeCode(ctx, u.UserID, req.OTP, map[string]interface{}{
		dynamo.FieldIsVerified: true,
		dynamo.FieldOTP:        nil,
		dynamo.FieldOTPExpiry:  nil,
	})
	if err != nil {
		return storeErr("verify otp", err)
	}
	slog.Info("user verified", "user_id", u.UserID)
	return nil
}

func (s *service) ResendOTP(ctx context.Context, req domain.ResendOTPRequest) error {
	if err := validate.Struct(&req); err != nil {
		return invalidInput(err)
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return storeErr("resend otp", err)
	}
	if u.IsVerified {
		return fmt.Errorf("resend otp: %w", domain.ErrAlreadyVerified)
	}
	code, err := s.rotateCode(ctx, u)
	if err != nil {
		return err
	}
	// The rotated code stays stored even if delivery fails; the next resend overwrites it.
	if err := s.mailer.SendEmail(u.Email, subjectResend, "Your new OTP is: "+code); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	s.mirrorSMS(ctx, u, "Your new OTP is: "+code)
	return nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, invalidInput(err)
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		// Burn the same bcrypt work as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(req.Password))
		return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, storeErr("login", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}
	if !u.IsVerified {
		return nil, fmt.Errorf("login: %w", domain.ErrNotVerified)
	}

	sid, err := pkgtoken.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSession, err)
	}
	now := s.now().UTC()
	sess := &domain.Session{
		SessionID: sid,
		UserID:    u.UserID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL).Unix(),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSession, err)
	}
	slog.Info("user logged in", "user_id", u.UserID)
	return &LoginResult{Session: sess, User: u}, nil
}

func (s *service) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return fmt.Errorf("logout: %w", domain.ErrUnauthenticated)
	}
	if err := s.sessions.Delete(ctx, sess.SessionID); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSession, err)
	}
	return nil
}

func (s *service) RequestPasswordReset(ctx context.Context, req domain.PasswordResetRequest) error {
	if err := validate.Struct(&req); err != nil {
		return invalidInput(err)
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return storeErr("request password reset", err)
	}
	code, err := s.rotateCode(ctx, u)
	if err != nil {
		return err
	}
	if err := s.mailer.SendEmail(u.Email, subjectReset, "Your password reset OTP is: "+code); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	s.mirrorSMS(ctx, u, "Your password reset OTP is: "+code)
	return nil
}

func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	if err := validate.Struct(&req); err != nil {
		return invalidInput(err)
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return storeErr("reset password", err)
	}
	if !otp.Valid(u.OTP, u.OTPExpiry, req.OTP, s.now()) {
		return fmt.Errorf("reset password: %w", domain.ErrInvalidOrExpiredCode)
	}
	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	err = s.users.ConsumeCode(ctx, u.UserID, req.OTP, map[string]interface{}{
		dynamo.FieldPasswordHash: string(hash),
		dynamo.FieldOTP:          nil,
		dynamo.FieldOTPExpiry:    nil,
	})
	if err != nil {
		return storeErr("reset password", err)
	}
	slog.Info("password reset", "user_id", u.UserID)
	return nil
}

// UpdateProfile applies the valid subset of name, phone and role and then
// rewrites the caller's session snapshot. Invalid values are skipped.
func (s *service) UpdateProfile(ctx context.Context, sess *domain.Session, req domain.UpdateProfileRequest) (*domain.Session, *domain.User, error) {
	if sess == nil {
		return nil, nil, fmt.Errorf("update profile: %w", domain.ErrUnauthenticated)
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			updates[dynamo.FieldName] = name
		}
	}
	if req.Phone != nil && validate.Phone(*req.Phone) {
		updates[dynamo.FieldPhone] = *req.Phone
	}
	if req.Role != nil && domain.ValidRole(*req.Role) {
		updates[dynamo.FieldRole] = *req.Role
	}
	if len(updates) == 0 {
		return nil, nil, fmt.Errorf("update profile: %w", domain.ErrNoChanges)
	}

	if err := s.users.Update(ctx, sess.UserID, updates); err != nil {
		return nil, nil, storeErr("update profile", err)
	}
	u, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		return nil, nil, storeErr("update profile", err)
	}

	refreshed := *sess
	refreshed.Name = u.Name
	refreshed.Phone = u.Phone
	refreshed.Role = u.Role
	refreshed.Email = u.Email
	if err := s.sessions.Update(ctx, &refreshed); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("update profile: %w", domain.ErrUnauthenticated)
		}
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrSession, err)
	}
	return &refreshed, u, nil
}

// Authenticate loads a live session by ID.
func (s *service) Authenticate(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthenticated
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSession, err)
	}
	return sess, nil
}

func (s *service) hashPassword(pw string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: password exceeds 72 bytes", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func (s *service) newCode() (string, time.Time, error) {
	code, err := otp.Generate()
	if err != nil {
		return "", time.Time{}, err
	}
	return code, s.now().UTC().Add(s.otpTTL), nil
}

// rotateCode stores a fresh code and expiry on u and returns the code.
func (s *service) rotateCode(ctx context.Context, u *domain.User) (string, error) {
	code, expiry, err := s.newCode()
	if err != nil {
		return "", err
	}
	err = s.users.Update(ctx, u.UserID, map[string]interface{}{
		dynamo.FieldOTP:       code,
		dynamo.FieldOTPExpiry: expiry,
	})
	if err != nil {
		return "", storeErr("store otp", err)
	}
	u.OTP, u.OTPExpiry = &code, &expiry
	return code, nil
}

// mirrorSMS copies the code to the user's phone. Failures are logged only.
func (s *service) mirrorSMS(ctx context.Context, u *domain.User, msg string) {
	if s.sms == nil || u.Phone == "" {
		return
	}
	if err := s.sms.SendSMS(ctx, u.Phone, msg); err != nil {
		slog.Warn("sms mirror failed", "user_id", u.UserID, "err", err)
	}
}

func (s *service) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), s.bcryptCost)
		if err != nil {
			slog.Error("generate dummy hash", "err", err)
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
}

// storeErr passes domain sentinels through and marks everything else as a
// storage failure.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrInvalidOrExpiredCode) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
}
