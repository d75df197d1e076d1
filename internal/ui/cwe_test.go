package ui

import (
	"strings"
	"testing"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

func TestCWEModel_RenderEntry(t *testing.T) {
	m := NewCWEModel()
	// Force the raw-markdown fallback so assertions are deterministic.
	m.renderer = nil

	out := m.renderEntry(model.CWE{
		ID:           "CWE-89",
		Name:         "SQL Injection",
		Description:  "Improper neutralization of SQL elements.",
		Severity:     "Critical",
		Remediation:  "Use parameterized queries.",
		References:   []string{"https://cwe.mitre.org/data/definitions/89.html"},
		OWASPMapping: []string{"A03:2021"},
	})

	for _, want := range []string{
		"CWE-89", "SQL Injection", "Critical",
		"A03:2021", "definitions/89",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in rendered entry", want)
		}
	}

	// Remediation is one markdown block, not a bullet per character.
	if !strings.Contains(out, "Use parameterized queries.") {
		t.Error("remediation text must render intact")
	}
	if strings.Contains(out, "- U") || strings.Contains(out, "%!s") {
		t.Error("remediation must not be split into per-rune bullets")
	}
}

func TestCWEModel_ListPopulation(t *testing.T) {
	m := NewCWEModel()
	m.SetEntries([]model.CWE{
		{ID: "CWE-79", Name: "Cross-site Scripting", Severity: "High"},
		{ID: "CWE-89", Name: "SQL Injection", Severity: "Critical"},
	})
	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("expected 2 items, got %d", got)
	}
	item, ok := m.list.Items()[1].(cweItem)
	if !ok {
		t.Fatal("unexpected item type")
	}
	if item.entry.ID != "CWE-89" {
		t.Errorf("expected CWE-89, got %s", item.entry.ID)
	}
}
