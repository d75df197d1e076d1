package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MikhailDrugie/se-attack-modeling/internal/api"
	"github.com/MikhailDrugie/se-attack-modeling/internal/creds"
	"github.com/MikhailDrugie/se-attack-modeling/internal/session"
)

// installFixture points newSessionFunc at a server fixture with a
// token already stored.
func installFixture(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := creds.NewMemStore()
	if err := store.SetToken("fixture-token"); err != nil {
		t.Fatal(err)
	}

	orig := newSessionFunc
	newSessionFunc = func() (*session.Manager, *api.Client, error) {
		client := api.NewClient(srv.URL, store)
		sess := session.NewManager(store, client, nil)
		client.OnUnauthorized(sess.ForcedLogout)
		return sess, client, nil
	}
	t.Cleanup(func() { newSessionFunc = orig })

	viper.Set("history.path", filepath.Join(t.TempDir(), "history.db"))
	t.Cleanup(func() { viper.Set("history.path", "") })

	return srv
}

func meHandler(role int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": 1, "username": "tester", "role": role, "is_active": true,
			"created_at": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func newTestCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestRunScanList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/me", meHandler(1))
	mux.HandleFunc("/api/scans/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id": 1, "target_url": "http://target.example", "status": 3,
				"created_at":              time.Now().UTC().Format(time.RFC3339),
				"user":                    map[string]any{"id": 1, "username": "tester", "role": 1},
				"vulnerabilities_amount":  4,
			},
		})
	})
	installFixture(t, mux)

	cmd, out := newTestCmd(t)
	if err := runScanList(cmd, nil); err != nil {
		t.Fatalf("runScanList: %v", err)
	}
	for _, want := range []string{"http://target.example", "Completed", "4"} {
		if !bytes.Contains(out.Bytes(), []byte(want)) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestRunScanGet_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/me", meHandler(1))
	mux.HandleFunc("/api/scans/99", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Scan not found"})
	})
	installFixture(t, mux)

	cmd, _ := newTestCmd(t)
	err := runScanGet(cmd, []string{"99"})
	if err == nil {
		t.Fatal("expected an error for a missing scan")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("not found")) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunScanCreate_DeniedForDeveloper(t *testing.T) {
	created := int32(0)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/me", meHandler(1)) // developer
	mux.HandleFunc("/api/scans/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			atomic.AddInt32(&created, 1)
		}
	})
	installFixture(t, mux)

	cmd, _ := newTestCmd(t)
	err := runScanCreate(cmd, []string{"http://target.example"})
	if err == nil {
		t.Fatal("expected a role denial")
	}
	if atomic.LoadInt32(&created) != 0 {
		t.Error("denied command must not reach the backend")
	}
}

func TestRunScanCreate_AnalystAllowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/me", meHandler(2)) // analyst
	mux.HandleFunc("/api/scans/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": 5, "target_url": "http://target.example", "status": 1,
			"created_at": time.Now().UTC().Format(time.RFC3339),
			"user":       map[string]any{"id": 1, "username": "tester", "role": 2},
		})
	})
	installFixture(t, mux)

	cmd, out := newTestCmd(t)
	if err := runScanCreate(cmd, []string{"http://target.example"}); err != nil {
		t.Fatalf("runScanCreate: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("Scan 5 queued")) {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestWatchScan_RunsToCompletion(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/me", meHandler(1))
	mux.HandleFunc("/api/scans/7", func(w http.ResponseWriter, r *http.Request) {
		status := 2
		if atomic.AddInt32(&polls, 1) >= 3 {
			status = 3
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": 7, "target_url": "http://target.example", "status": status,
			"created_at":      time.Now().UTC().Format(time.RFC3339),
			"user":            map[string]any{"id": 1, "username": "tester", "role": 1},
			"vulnerabilities": []any{},
		})
	})
	installFixture(t, mux)

	_, client, err := newSessionFunc()
	if err != nil {
		t.Fatal(err)
	}
	cmd, out := newTestCmd(t)
	if err := watchScan(cmd, client, nil, 7, time.Millisecond); err != nil {
		t.Fatalf("watchScan: %v", err)
	}
	for _, want := range []string{"Running", "Completed", "Findings: 0"} {
		if !bytes.Contains(out.Bytes(), []byte(want)) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestWatchScan_FailedScanErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/me", meHandler(1))
	mux.HandleFunc("/api/scans/8", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": 8, "target_url": "http://target.example", "status": 4,
			"created_at": time.Now().UTC().Format(time.RFC3339),
			"user":       map[string]any{"id": 1, "username": "tester", "role": 1},
		})
	})
	installFixture(t, mux)

	_, client, err := newSessionFunc()
	if err != nil {
		t.Fatal(err)
	}
	cmd, _ := newTestCmd(t)
	if err := watchScan(cmd, client, nil, 8, time.Millisecond); err == nil {
		t.Fatal("expected an error for a failed scan")
	}
}

func TestParseID(t *testing.T) {
	if _, err := parseID("abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
	if _, err := parseID("-3"); err == nil {
		t.Error("expected error for negative id")
	}
	id, err := parseID("12")
	if err != nil || id != 12 {
		t.Errorf("parseID(12) = %d, %v", id, err)
	}
}
