package model

import "time"

// ScanStatus is the backend's scan lifecycle enum. Transitions are
// monotonic: Pending -> Running -> Completed or Failed. The status is
// owned by the scan engine; the client only ever observes it.
type ScanStatus int

const (
	ScanPending   ScanStatus = 1
	ScanRunning   ScanStatus = 2
	ScanCompleted ScanStatus = 3
	ScanFailed    ScanStatus = 4
)

func (s ScanStatus) String() string {
	switch s {
	case ScanPending:
		return "Pending"
	case ScanRunning:
		return "Running"
	case ScanCompleted:
		return "Completed"
	case ScanFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transition is expected.
func (s ScanStatus) IsTerminal() bool {
	return s == ScanCompleted || s == ScanFailed
}

// Tone is a presentation-neutral color class. The TUI and CLI map tones
// to concrete styles; keeping the mapping here makes it total and testable
// without dragging a styling dependency into the data model.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneInfo
	ToneSuccess
	ToneWarning
	ToneError
)

// Tone classifies a scan status for display. Total over all inputs:
// values outside the defined enum fall back to the neutral tone.
func (s ScanStatus) Tone() Tone {
	switch s {
	case ScanCompleted:
		return ToneSuccess
	case ScanRunning:
		return ToneWarning
	case ScanFailed:
		return ToneError
	default:
		return ToneNeutral
	}
}

// Severity is the backend's vulnerability severity enum.
type Severity int

const (
	SeverityLow      Severity = 1
	SeverityMedium   Severity = 2
	SeverityHigh     Severity = 3
	SeverityCritical Severity = 4
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	case SeverityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Tone classifies a severity for display. Critical and High share the
// most urgent treatment. Total over all inputs.
func (s Severity) Tone() Tone {
	switch s {
	case SeverityCritical, SeverityHigh:
		return ToneError
	case SeverityMedium:
		return ToneWarning
	case SeverityLow:
		return ToneInfo
	default:
		return ToneNeutral
	}
}

// Vulnerability is a single finding belonging to exactly one scan.
// CWEID is a weak reference into the CWE knowledge base; the server may
// inline the resolved record in detail responses.
type Vulnerability struct {
	ID          int      `json:"id"`
	ScanID      int      `json:"scan_id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Severity    Severity `json:"severity"`
	URLPath     string   `json:"url_path"`
	Type        int      `json:"type,omitempty"`
	CWEID       *string  `json:"cwe_id"`
	CWE         *CWE     `json:"cwe,omitempty"`
}

// Scan is the detail shape returned by GET /api/scans/{id}. The
// vulnerability slice is populated only once the scan completed; some
// responses carry only the summary count instead.
type Scan struct {
	ID                    int             `json:"id"`
	TargetURL             string          `json:"target_url"`
	Status                ScanStatus      `json:"status"`
	CreatedAt             time.Time       `json:"created_at"`
	CompletedAt           *time.Time      `json:"completed_at,omitempty"`
	User                  UserBrief       `json:"user"`
	Vulnerabilities       []Vulnerability `json:"vulnerabilities"`
	VulnerabilitiesAmount *int            `json:"vulnerabilities_amount,omitempty"`
}

// ScanListItem is the summary shape returned by GET /api/scans/. It
// carries a count instead of the full vulnerability collection.
type ScanListItem struct {
	ID                    int        `json:"id"`
	TargetURL             string     `json:"target_url"`
	Status                ScanStatus `json:"status"`
	CreatedAt             time.Time  `json:"created_at"`
	User                  UserBrief  `json:"user"`
	VulnerabilitiesAmount int        `json:"vulnerabilities_amount"`
}

// VulnerabilityCount prefers the loaded collection over the summary
// amount, then falls back to the amount, then to zero. The order matters:
// detail responses carry the slice, list responses only the count, and
// the slice wins when both are present.
func (s *Scan) VulnerabilityCount() int {
	if s == nil {
		return 0
	}
	if s.Vulnerabilities != nil {
		return len(s.Vulnerabilities)
	}
	if s.VulnerabilitiesAmount != nil {
		return *s.VulnerabilitiesAmount
	}
	return 0
}

// VulnerabilityCount returns the server-side summary count.
func (s *ScanListItem) VulnerabilityCount() int {
	if s == nil {
		return 0
	}
	return s.VulnerabilitiesAmount
}
