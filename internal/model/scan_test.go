package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanStatus_Tone(t *testing.T) {
	tests := []struct {
		status ScanStatus
		want   Tone
	}{
		{ScanCompleted, ToneSuccess},
		{ScanRunning, ToneWarning},
		{ScanFailed, ToneError},
		{ScanPending, ToneNeutral},
		// Out-of-range values must map to neutral, never panic.
		{ScanStatus(0), ToneNeutral},
		{ScanStatus(99), ToneNeutral},
		{ScanStatus(-1), ToneNeutral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.Tone(), "status %d", tt.status)
	}
}

func TestScanStatus_IsTerminal(t *testing.T) {
	assert.False(t, ScanPending.IsTerminal())
	assert.False(t, ScanRunning.IsTerminal())
	assert.True(t, ScanCompleted.IsTerminal())
	assert.True(t, ScanFailed.IsTerminal())
	assert.False(t, ScanStatus(42).IsTerminal())
}

func TestSeverity_Tone(t *testing.T) {
	assert.Equal(t, ToneError, SeverityCritical.Tone())
	assert.Equal(t, ToneError, SeverityHigh.Tone())
	assert.Equal(t, ToneWarning, SeverityMedium.Tone())
	assert.Equal(t, ToneInfo, SeverityLow.Tone())
	assert.Equal(t, ToneNeutral, Severity(0).Tone())
	assert.Equal(t, ToneNeutral, Severity(17).Tone())
}

func TestScan_VulnerabilityCount(t *testing.T) {
	three := 3
	ten := 10

	t.Run("slice wins over summary amount", func(t *testing.T) {
		s := &Scan{
			Vulnerabilities:       []Vulnerability{{ID: 1}, {ID: 2}, {ID: 3}},
			VulnerabilitiesAmount: &ten,
		}
		assert.Equal(t, 3, s.VulnerabilityCount())
	})

	t.Run("empty slice is authoritative", func(t *testing.T) {
		s := &Scan{Vulnerabilities: []Vulnerability{}, VulnerabilitiesAmount: &ten}
		assert.Equal(t, 0, s.VulnerabilityCount())
	})

	t.Run("falls back to summary amount", func(t *testing.T) {
		s := &Scan{VulnerabilitiesAmount: &three}
		assert.Equal(t, 3, s.VulnerabilityCount())
	})

	t.Run("zero when neither present", func(t *testing.T) {
		assert.Equal(t, 0, (&Scan{}).VulnerabilityCount())
		assert.Equal(t, 0, (*Scan)(nil).VulnerabilityCount())
	})
}

func TestScan_RunningToCompleted(t *testing.T) {
	// A scan re-fetched after completion exposes its findings.
	running := &Scan{ID: 7, Status: ScanRunning}
	assert.False(t, running.Status.IsTerminal())
	assert.Equal(t, 0, running.VulnerabilityCount())

	completed := &Scan{
		ID:     7,
		Status: ScanCompleted,
		Vulnerabilities: []Vulnerability{
			{ID: 1, Name: "SQL Injection", Severity: SeverityCritical},
			{ID: 2, Name: "Reflected XSS", Severity: SeverityHigh},
			{ID: 3, Name: "Missing CSRF token", Severity: SeverityMedium},
		},
	}
	assert.True(t, completed.Status.IsTerminal())
	assert.Equal(t, 3, completed.VulnerabilityCount())
}

func TestScan_UnmarshalWire(t *testing.T) {
	// Enums arrive as the backend's integer values.
	raw := `{
		"id": 12,
		"target_url": "https://example.com",
		"status": 3,
		"created_at": "2026-05-01T10:00:00Z",
		"completed_at": "2026-05-01T10:04:31Z",
		"user": {"id": 1, "username": "admin", "role": 3},
		"vulnerabilities": [
			{"id": 5, "name": "SQL Injection", "severity": 4, "url_path": "/login", "cwe_id": "CWE-89"}
		]
	}`
	var s Scan
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, ScanCompleted, s.Status)
	assert.Equal(t, RoleAdmin, s.User.Role)
	require.Len(t, s.Vulnerabilities, 1)
	assert.Equal(t, SeverityCritical, s.Vulnerabilities[0].Severity)
	require.NotNil(t, s.Vulnerabilities[0].CWEID)
	assert.Equal(t, "CWE-89", *s.Vulnerabilities[0].CWEID)
	assert.NotNil(t, s.CompletedAt)
}

func TestRole_ParseAndString(t *testing.T) {
	r, ok := ParseRole("analyst")
	require.True(t, ok)
	assert.Equal(t, RoleAnalyst, r)

	_, ok = ParseRole("root")
	assert.False(t, ok)

	assert.Equal(t, "Administrator", RoleAdmin.String())
	assert.Equal(t, "Unknown", Role(9).String())
	assert.True(t, RoleDev.Valid())
	assert.False(t, Role(0).Valid())
}
