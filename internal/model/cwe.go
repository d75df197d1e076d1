package model

// CWE is a read-only knowledge base record, keyed by the canonical
// identifier string ("CWE-89"). Shared across many vulnerabilities.
// Description and remediation are markdown as authored on the server.
type CWE struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	ExtendedDescription string   `json:"extended_description,omitempty"`
	Severity            string   `json:"severity"`
	Remediation         string   `json:"remediation"`
	References          []string `json:"references,omitempty"`
	OWASPMapping        []string `json:"owasp_mapping,omitempty"`
}
