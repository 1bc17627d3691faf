package testenv

import (
	"net/http"
	"testing"
)

func TestSetupProvidesWorkingSession(t *testing.T) {
	env := Setup(t)

	resp := env.Do(t, http.MethodGet, "/api/whoami", nil, true)
	var who struct {
		Email string `json:"email"`
	}
	Decode(t, resp, http.StatusOK, &who)
	if who.Email != AdminEmail {
		t.Errorf("whoami email = %q, want %q", who.Email, AdminEmail)
	}
}

func TestSetupIsolatesDatabases(t *testing.T) {
	first := Setup(t)
	second := Setup(t)

	first.CreateClient(t, "Only in first", "one@example.com")

	resp := second.Do(t, http.MethodGet, "/api/clients", nil, true)
	var clients []struct {
		ID string `json:"id"`
	}
	Decode(t, resp, http.StatusOK, &clients)
	if len(clients) != 0 {
		t.Errorf("second environment sees %d clients, want 0", len(clients))
	}
}
