package client

import "sync"

// Store persists session state between runs. MemStore is the in-process
// default; callers wanting survival across restarts provide their own.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

const (
	keyToken        = "token"
	keyUserID       = "userId"
	keyMedicalName  = "medicalName"
	keyOwnerName    = "ownerName"
	keyEmail        = "email"
	keyRole         = "role"
	keySelectedRole = "selectedRole"
)

// MemStore is a concurrency-safe in-memory Store
type MemStore struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemStore creates an empty MemStore
func NewMemStore() *MemStore {
	return &MemStore{m: map[string]string{}}
}

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *MemStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// Session tracks the current login. All state lives in the Store so a
// persistent store survives process restarts.
type Session struct {
	store Store
}

// NewSession wraps a Store
func NewSession(store Store) *Session {
	return &Session{store: store}
}

// SetLoggedIn records a fresh token and user after login or register
func (s *Session) SetLoggedIn(token string, user UserSnapshot) {
	s.store.Set(keyToken, token)
	s.SetUser(user)
}

// SetUser refreshes the stored user snapshot without touching the token
func (s *Session) SetUser(user UserSnapshot) {
	s.store.Set(keyUserID, user.ID)
	s.store.Set(keyMedicalName, user.MedicalName)
	s.store.Set(keyOwnerName, user.OwnerName)
	s.store.Set(keyEmail, user.Email)
	s.store.Set(keyRole, user.Role)
}

// Clear wipes everything, including the selected role
func (s *Session) Clear() {
	for _, key := range []string{keyToken, keyUserID, keyMedicalName, keyOwnerName, keyEmail, keyRole, keySelectedRole} {
		s.store.Delete(key)
	}
}

// Token returns the stored JWT, or "" when logged out
func (s *Session) Token() string {
	token, _ := s.store.Get(keyToken)
	return token
}

// LoggedIn reports whether a token is present
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// User rebuilds the snapshot from the store
func (s *Session) User() UserSnapshot {
	get := func(key string) string {
		v, _ := s.store.Get(key)
		return v
	}
	return UserSnapshot{
		ID:          get(keyUserID),
		MedicalName: get(keyMedicalName),
		OwnerName:   get(keyOwnerName),
		Email:       get(keyEmail),
		Role:        get(keyRole),
	}
}

// SetSelectedRole records which role the person picked on the role screen.
// It is presentation state, separate from the account's actual role.
func (s *Session) SetSelectedRole(role string) {
	s.store.Set(keySelectedRole, role)
}

// SelectedRole returns the picked role, or "" when none was chosen
func (s *Session) SelectedRole() string {
	role, _ := s.store.Get(keySelectedRole)
	return role
}
