package client

import (
	"sync"
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession(NewMemStore())
	if s.LoggedIn() {
		t.Fatal("fresh session should be logged out")
	}

	user := UserSnapshot{
		ID:          "u1",
		MedicalName: "City Medical",
		OwnerName:   "Ravi",
		Email:       "store@example.com",
		Role:        "owner",
	}
	s.SetLoggedIn("token-abc", user)

	if !s.LoggedIn() {
		t.Fatal("session should be logged in")
	}
	if s.Token() != "token-abc" {
		t.Errorf("Token() = %q", s.Token())
	}
	if got := s.User(); got != user {
		t.Errorf("User() = %+v, want %+v", got, user)
	}

	s.Clear()
	if s.LoggedIn() {
		t.Error("cleared session should be logged out")
	}
	if got := s.User(); got.ID != "" || got.Email != "" {
		t.Errorf("cleared session still holds user %+v", got)
	}
}

func TestSessionSelectedRole(t *testing.T) {
	s := NewSession(NewMemStore())
	if s.SelectedRole() != "" {
		t.Error("no role should be selected initially")
	}

	s.SetSelectedRole("staff")
	if s.SelectedRole() != "staff" {
		t.Errorf("SelectedRole() = %q", s.SelectedRole())
	}

	// Clearing the session also forgets the picked role.
	s.Clear()
	if s.SelectedRole() != "" {
		t.Errorf("SelectedRole() after clear = %q", s.SelectedRole())
	}
}

func TestSetUserKeepsToken(t *testing.T) {
	s := NewSession(NewMemStore())
	s.SetLoggedIn("token-abc", UserSnapshot{ID: "u1", Email: "old@example.com"})

	s.SetUser(UserSnapshot{ID: "u1", Email: "new@example.com"})
	if s.Token() != "token-abc" {
		t.Error("refreshing the user must not drop the token")
	}
	if s.User().Email != "new@example.com" {
		t.Errorf("Email = %q", s.User().Email)
	}
}

func TestMemStoreConcurrentAccess(t *testing.T) {
	store := NewMemStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Set("token", "abc")
		}()
		go func() {
			defer wg.Done()
			store.Get("token")
		}()
	}
	wg.Wait()
}
