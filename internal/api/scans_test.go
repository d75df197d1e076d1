package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestClient_ListScans_Pagination(t *testing.T) {
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("expected limit=10, got %q", got)
		}
		if got := r.URL.Query().Get("offset"); got != "20" {
			t.Errorf("expected offset=20, got %q", got)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id": 1, "target_url": "https://a.example", "status": 2,
				"created_at": "2026-05-01T10:00:00Z",
				"user":       map[string]any{"id": 1, "username": "dev", "role": 1},
				"vulnerabilities_amount": 0,
			},
			{
				"id": 2, "target_url": "https://b.example", "status": 3,
				"created_at": "2026-05-01T09:00:00Z",
				"user":       map[string]any{"id": 1, "username": "dev", "role": 1},
				"vulnerabilities_amount": 5,
			},
		})
	}))
	store.SetToken("tok")

	scans, err := client.ListScans(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("ListScans() returned an unexpected error: %v", err)
	}
	if len(scans) != 2 {
		t.Fatalf("expected 2 scans, got %d", len(scans))
	}
	if scans[1].VulnerabilityCount() != 5 {
		t.Errorf("expected summary count 5, got %d", scans[1].VulnerabilityCount())
	}
}

func TestClient_CreateSASTScan(t *testing.T) {
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scans/sast" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart body: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer file.Close()
		if header.Filename != "source.zip" {
			t.Errorf("expected filename 'source.zip', got %q", header.Filename)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "fake-zip-bytes" {
			t.Errorf("unexpected upload content %q", content)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id": 9, "target_url": "source.zip", "status": 1,
			"created_at": "2026-05-01T10:00:00Z",
			"user":       map[string]any{"id": 2, "username": "analyst", "role": 2},
		})
	}))
	store.SetToken("tok")

	scan, err := client.CreateSASTScan(context.Background(), "source.zip", strings.NewReader("fake-zip-bytes"))
	if err != nil {
		t.Fatalf("CreateSASTScan() returned an unexpected error: %v", err)
	}
	if scan.ID != 9 {
		t.Errorf("expected scan id 9, got %d", scan.ID)
	}
}

func TestClient_Reports(t *testing.T) {
	const html = "<html><body>report</body></html>"
	pdf := []byte("%PDF-1.7 fake")

	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/scans/3/report/html":
			io.WriteString(w, html)
		case "/api/scans/3/report/html/download":
			w.Header().Set("Content-Disposition", `attachment; filename="scan_3.html"`)
			io.WriteString(w, html)
		case "/api/scans/3/report/pdf":
			w.Header().Set("Content-Type", "application/pdf")
			w.Write(pdf)
		default:
			http.NotFound(w, r)
		}
	}))
	store.SetToken("tok")

	got, err := client.ReportHTML(context.Background(), 3)
	if err != nil {
		t.Fatalf("ReportHTML() returned an unexpected error: %v", err)
	}
	if got != html {
		t.Errorf("unexpected html body %q", got)
	}

	var buf bytes.Buffer
	if err := client.DownloadReportHTML(context.Background(), 3, &buf); err != nil {
		t.Fatalf("DownloadReportHTML() returned an unexpected error: %v", err)
	}
	if buf.String() != html {
		t.Errorf("unexpected downloaded html %q", buf.String())
	}

	buf.Reset()
	if err := client.DownloadReportPDF(context.Background(), 3, &buf); err != nil {
		t.Fatalf("DownloadReportPDF() returned an unexpected error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), pdf) {
		t.Error("pdf bytes corrupted in transit")
	}
}

func TestClient_GetCWE(t *testing.T) {
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cwe/CWE-89" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "CWE-89",
			"name":        "SQL Injection",
			"description": "Improper neutralization of SQL elements.",
			"severity":    "Critical",
			"remediation": "Use parameterized queries.",
			"owasp_mapping": []string{"A03:2021"},
		})
	}))
	store.SetToken("tok")

	entry, err := client.GetCWE(context.Background(), "CWE-89")
	if err != nil {
		t.Fatalf("GetCWE() returned an unexpected error: %v", err)
	}
	if entry.Name != "SQL Injection" || len(entry.OWASPMapping) != 1 {
		t.Errorf("unexpected entry %+v", entry)
	}
}
