package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 12 * time.Hour

// AuthService guards the back-office mutating routes with a single staff
// credential checked against a bcrypt hash from config. Sessions live in
// memory; a restart logs everyone out.
type AuthService struct {
	AdminEmail string
	AdminHash  string

	mu       sync.Mutex
	sessions map[string]time.Time
}

func NewAuthService(adminEmail, adminHash string) *AuthService {
	return &AuthService{
		AdminEmail: adminEmail,
		AdminHash:  adminHash,
		sessions:   make(map[string]time.Time),
	}
}

// Enabled reports whether a staff credential is configured. With none, the
// deployment runs open (dev mode) and Login always fails.
func (s *AuthService) Enabled() bool {
	return s.AdminEmail != "" && s.AdminHash != ""
}

var errBadCredentials = errors.New("invalid email or password")

func (s *AuthService) Login(email, password string) (string, error) {
	if !s.Enabled() || email != s.AdminEmail {
		return "", errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.AdminHash), []byte(password)); err != nil {
		return "", errBadCredentials
	}

	sid := uuid.NewString()
	s.mu.Lock()
	s.sessions[sid] = time.Now().Add(sessionTTL)
	s.mu.Unlock()
	return sid, nil
}

func (s *AuthService) LoggedIn(sid string) bool {
	if sid == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.sessions[sid]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(s.sessions, sid)
		return false
	}
	return true
}

func (s *AuthService) Logout(sid string) {
	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
}
