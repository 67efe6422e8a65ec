package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventPublisher receives auth lifecycle events for downstream services.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

type authEvent struct {
	Event       string    `json:"event"`
	PrincipalID string    `json:"principal_id"`
	Kind        Kind      `json:"kind"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Service orchestrates registration, login, logout and request-time identity
// resolution on top of the credential store and revocation ledger.
type Service struct {
	store  Store
	codec  *Codec
	events EventPublisher
	now    func() time.Time
}

// ServiceOption configures optional Service behavior.
type ServiceOption func(*Service)

// WithEvents wires an event publisher. Publishing is best effort and never
// fails the request that triggered it.
func WithEvents(pub EventPublisher) ServiceOption {
	return func(s *Service) {
		if pub != nil {
			s.events = pub
		}
	}
}

// WithServiceClock overrides the time source (useful for tests).
func WithServiceClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewService(store Store, codec *Codec, opts ...ServiceOption) *Service {
	svc := &Service{
		store:  store,
		codec:  codec,
		events: nopPublisher{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// RegisterUserInput carries the rider registration fields after shape
// validation.
type RegisterUserInput struct {
	Fullname Fullname
	Email    string
	Password string
}

// RegisterCaptainInput carries the driver registration fields after shape
// validation.
type RegisterCaptainInput struct {
	Fullname Fullname
	Email    string
	Password string
	Vehicle  Vehicle
}

// RegisterUser creates a rider account and issues its first token.
// A second registration with the same email fails with ErrAlreadyExists.
func (s *Service) RegisterUser(ctx context.Context, in RegisterUserInput) (string, *User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}
	user := &User{
		Fullname:     in.Fullname,
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return "", nil, err
	}
	token, _, err := s.codec.Issue(user.ID, KindUser)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	s.publish(ctx, "auth.user.registered", user.ID, KindUser)
	user.PasswordHash = ""
	return token, user, nil
}

// RegisterCaptain creates a driver account and issues its first token.
func (s *Service) RegisterCaptain(ctx context.Context, in RegisterCaptainInput) (string, *Captain, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}
	captain := &Captain{
		Fullname:     in.Fullname,
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Vehicle:      in.Vehicle,
	}
	if err := s.store.Captains().Create(ctx, captain); err != nil {
		return "", nil, err
	}
	token, _, err := s.codec.Issue(captain.ID, KindCaptain)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	s.publish(ctx, "auth.captain.registered", captain.ID, KindCaptain)
	captain.PasswordHash = ""
	return token, captain, nil
}

// LoginUser verifies rider credentials and issues a token. Unknown email and
// wrong password produce the same ErrInvalidCredentials so account existence
// does not leak.
func (s *Service) LoginUser(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.store.Users().FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, _, err := s.codec.Issue(user.ID, KindUser)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	user.PasswordHash = ""
	return token, user, nil
}

// LoginCaptain verifies driver credentials and issues a token.
func (s *Service) LoginCaptain(ctx context.Context, email, password string) (string, *Captain, error) {
	captain, err := s.store.Captains().FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := VerifyPassword(captain.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, _, err := s.codec.Issue(captain.ID, KindCaptain)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	captain.PasswordHash = ""
	return token, captain, nil
}

// Logout inserts the presented token into the revocation ledger. The token
// is not validated first: revoking a garbage string is harmless and the
// insert is idempotent.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}
	if err := s.store.Ledger().Revoke(ctx, token); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.publish(ctx, "auth.session.revoked", "", "")
	return nil
}

// ResolveUser resolves a token to a rider account. The revocation check runs
// before signature verification so revocation always wins over a token that
// would otherwise verify as fresh.
func (s *Service) ResolveUser(ctx context.Context, token string) (*User, error) {
	claims, err := s.resolve(ctx, token, KindUser)
	if err != nil {
		return nil, err
	}
	return s.store.Users().Find(ctx, claims.Subject)
}

// ResolveCaptain resolves a token to a driver account. A decoded id with no
// matching record fails ErrNotFound, same as the rider path.
func (s *Service) ResolveCaptain(ctx context.Context, token string) (*Captain, error) {
	claims, err := s.resolve(ctx, token, KindCaptain)
	if err != nil {
		return nil, err
	}
	return s.store.Captains().Find(ctx, claims.Subject)
}

func (s *Service) resolve(ctx context.Context, token string, kind Kind) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	revoked, err := s.store.Ledger().IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("ledger lookup: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) publish(ctx context.Context, routingKey, principalID string, kind Kind) {
	_ = s.events.Publish(ctx, routingKey, authEvent{
		Event:       routingKey,
		PrincipalID: principalID,
		Kind:        kind,
		OccurredAt:  s.now().UTC(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
