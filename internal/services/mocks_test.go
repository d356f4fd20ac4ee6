package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"authcore/internal/models"
	"authcore/internal/repositories"
)

var errDialFailed = errors.New("smtp dial failed")

// In-memory fakes mirroring the Postgres repositories, including the
// conditional-write semantics the services rely on.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	users  *fakeUserRepo
	tokens map[string]*models.Token // keyed userID+"/"+kind
}

func newFakeTokenRepo(users *fakeUserRepo) *fakeTokenRepo {
	return &fakeTokenRepo{users: users, tokens: make(map[string]*models.Token)}
}

func tokenKey(userID string, kind models.TokenKind) string {
	return userID + "/" + string(kind)
}

func (f *fakeTokenRepo) Upsert(_ context.Context, token *models.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.CreatedAt = time.Now()
	token.ConsumedAt = nil
	cp := *token
	f.tokens[tokenKey(token.UserID, token.Kind)] = &cp
	return nil
}

func (f *fakeTokenRepo) consume(value string, kind models.TokenKind) (string, error) {
	now := time.Now()
	for _, t := range f.tokens {
		if t.Value != value || t.Kind != kind {
			continue
		}
		if t.ConsumedAt != nil || now.After(t.ExpiresAt) {
			return "", repositories.ErrNotFound
		}
		t.ConsumedAt = &now
		return t.UserID, nil
	}
	return "", repositories.ErrNotFound
}

func (f *fakeTokenRepo) ConsumeVerifyEmail(_ context.Context, value string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, err := f.consume(value, models.TokenKindEmailVerification)
	if err != nil {
		return "", err
	}
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	if u, ok := f.users.users[userID]; ok {
		u.EmailVerified = true
	}
	return userID, nil
}

func (f *fakeTokenRepo) ConsumeResetPassword(_ context.Context, value, passwordHash string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, err := f.consume(value, models.TokenKindPasswordReset)
	if err != nil {
		return "", err
	}
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	if u, ok := f.users.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return userID, nil
}

func (f *fakeTokenRepo) GetForUser(_ context.Context, userID string, kind models.TokenKind) (*models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenKey(userID, kind)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	getCalls int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, id string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	s, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) UpdateExpiry(_ context.Context, id string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.ExpiresAt = expiresAt
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) DeleteAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

type fakeOAuthRepo struct {
	mu    sync.Mutex
	links map[string]*models.OAuthLink
}

func newFakeOAuthRepo() *fakeOAuthRepo {
	return &fakeOAuthRepo{links: make(map[string]*models.OAuthLink)}
}

func linkKey(providerID, providerUserID string) string {
	return providerID + "/" + providerUserID
}

func (f *fakeOAuthRepo) Create(_ context.Context, link *models.OAuthLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := linkKey(link.ProviderID, link.ProviderUserID)
	if _, ok := f.links[key]; ok {
		return repositories.ErrDuplicate
	}
	link.CreatedAt = time.Now()
	cp := *link
	f.links[key] = &cp
	return nil
}

func (f *fakeOAuthRepo) Get(_ context.Context, providerID, providerUserID string) (*models.OAuthLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[linkKey(providerID, providerUserID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

type sentEmail struct {
	To    string
	Token string
	Kind  models.TokenKind
}

type mockEmailService struct {
	mu   sync.Mutex
	sent []sentEmail
	fail bool
}

func (m *mockEmailService) SendVerificationEmail(email, token string) error {
	return m.record(email, token, models.TokenKindEmailVerification)
}

func (m *mockEmailService) SendPasswordResetEmail(email, token string) error {
	return m.record(email, token, models.TokenKindPasswordReset)
}

func (m *mockEmailService) record(email, token string, kind models.TokenKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errDialFailed
	}
	m.sent = append(m.sent, sentEmail{To: email, Token: token, Kind: kind})
	return nil
}

func (m *mockEmailService) lastSent() (sentEmail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentEmail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

func (m *mockEmailService) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
