package main

import (
	"strings"
	"testing"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

func TestCWEMarkdown(t *testing.T) {
	md := cweMarkdown(&model.CWE{
		ID:           "CWE-89",
		Name:         "SQL Injection",
		Description:  "Improper neutralization of SQL elements.",
		Severity:     "Critical",
		Remediation:  "Use parameterized queries.",
		References:   []string{"https://cwe.mitre.org/data/definitions/89.html"},
		OWASPMapping: []string{"A03:2021"},
	})

	for _, want := range []string{
		"# CWE-89: SQL Injection",
		"**Severity:** Critical",
		"## Remediation\n\nUse parameterized queries.",
		"- https://cwe.mitre.org/data/definitions/89.html",
		"A03:2021",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in markdown:\n%s", want, md)
		}
	}
	if strings.Contains(md, "%!s") {
		t.Errorf("remediation rendered per rune:\n%s", md)
	}
}

func TestCWEMarkdown_OmitsEmptySections(t *testing.T) {
	md := cweMarkdown(&model.CWE{ID: "CWE-79", Name: "Cross-site Scripting"})
	if strings.Contains(md, "## Remediation") {
		t.Error("empty remediation must not emit a heading")
	}
	if strings.Contains(md, "## References") {
		t.Error("empty references must not emit a heading")
	}
}
