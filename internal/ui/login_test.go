package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
)

func typeRunes(t *testing.T, m LoginModel, s string) LoginModel {
	t.Helper()
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestLoginModel_SubmitRequiresBothFields(t *testing.T) {
	m := NewLoginModel()

	// Enter on the username field only moves focus.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Submitted() {
		t.Fatal("enter on username must not submit")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Submitted() {
		t.Fatal("empty credentials must not submit")
	}
	if m.errMsg == "" {
		t.Error("expected a validation message")
	}
}

func TestLoginModel_SubmitFlow(t *testing.T) {
	m := NewLoginModel()
	m = typeRunes(t, m, "alice")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = typeRunes(t, m, "s3cret")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !m.Submitted() {
		t.Fatal("expected submission")
	}
	username, password := m.Credentials()
	if username != "alice" || password != "s3cret" {
		t.Errorf("credentials = %q/%q", username, password)
	}

	// Submitted is a one-shot flag tied to the last Update.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Submitted() {
		t.Error("flag must reset on the next update")
	}
}

func TestLoginModel_BadCredentialsClearPassword(t *testing.T) {
	m := NewLoginModel()
	m = typeRunes(t, m, "alice")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = typeRunes(t, m, "wrong")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = m.HandleResult(loginResultMsg{err: apierr.ErrInvalidCredentials})
	if !strings.Contains(m.View(), "Invalid username or password") {
		t.Error("expected the inline rejection message")
	}
	if _, password := m.Credentials(); password != "" {
		t.Error("password must be cleared after a rejection")
	}

	m, _ = m.HandleResult(loginResultMsg{err: errors.New("dial tcp: connection refused")})
	if !strings.Contains(m.View(), "connection refused") {
		t.Error("transport errors surface verbatim")
	}
}

func TestNewScanModel_TargetValidation(t *testing.T) {
	cases := []struct {
		target string
		valid  bool
	}{
		{"http://example.com", true},
		{"https://example.com/app", true},
		{"example.com", false},
		{"ftp://example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := validTarget(tc.target); got != tc.valid {
			t.Errorf("validTarget(%q) = %v, want %v", tc.target, got, tc.valid)
		}
	}
}

func TestNewScanModel_EscCancels(t *testing.T) {
	m := NewNewScanModel()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.Cancelled() {
		t.Fatal("expected cancellation")
	}
	if m.Submitted() {
		t.Error("cancel must not submit")
	}
}
