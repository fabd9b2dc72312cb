package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/limbsalvage/clti/internal/config"
	"github.com/limbsalvage/clti/internal/domain/clti"
	"github.com/limbsalvage/clti/internal/platform/auth"
	"github.com/limbsalvage/clti/internal/platform/db"
	"github.com/limbsalvage/clti/internal/platform/websocket"
)

func writeSnapshot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestEvaluateCmd(t *testing.T) {
	path := writeSnapshot(t, `{"abi":0.5,"necrosis":false}`)

	out, err := runCmd(t, "evaluate", "--file", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var snap clti.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if snap.WLevel == nil || *snap.WLevel != 0 {
		t.Errorf("expected W level 0, got %v", snap.WLevel)
	}
	if snap.ILevel == nil || *snap.ILevel != 2 {
		t.Errorf("expected I level 2, got %v", snap.ILevel)
	}
	if snap.ClinicalStage == nil || *snap.ClinicalStage != 2 {
		t.Errorf("expected clinical stage 2, got %v", snap.ClinicalStage)
	}
	if snap.AmputationRisk != clti.RiskLow {
		t.Errorf("expected low amputation risk, got %s", snap.AmputationRisk)
	}
}

func TestEvaluateCmd_InvalidSnapshot(t *testing.T) {
	path := writeSnapshot(t, `{"psat":"85"}`)

	if _, err := runCmd(t, "evaluate", "--file", path); err == nil {
		t.Fatal("expected error for unknown psat band")
	}
}

func TestEvaluateCmd_MissingFile(t *testing.T) {
	if _, err := runCmd(t, "evaluate", "--file", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExportCmd(t *testing.T) {
	path := writeSnapshot(t, `{"abi":0.9,"necrosis":true,"necrosis_type":"ulcer"}`)
	out := filepath.Join(t.TempDir(), "report.xlsx")

	msg, err := runCmd(t, "export", "--file", path, "--out", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(msg, out) {
		t.Errorf("expected output path in message, got %q", msg)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty workbook")
	}
}

func TestPrintStatus(t *testing.T) {
	applied := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	printStatus(&buf, []db.MigrationStatus{
		{Version: 1, Name: "clti_case", Applied: true, AppliedAt: &applied},
		{Version: 2, Name: "case_label", Applied: false},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "applied") || !strings.Contains(lines[1], "2026-03-01 09:30:00") {
		t.Errorf("unexpected applied row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "pending") {
		t.Errorf("unexpected pending row: %q", lines[2])
	}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Env:            "development",
		CORSOrigins:    []string{"http://localhost:3000"},
		BodyLimit:      "1M",
		RequestTimeout: 5 * time.Second,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
	logger := zerolog.Nop()
	hub := websocket.NewHub(logger)
	svc := clti.NewService(clti.NewCaseRepoMemory(), hub, logger)
	return newEcho(cfg, logger, svc, hub, nil)
}

func TestNewEcho_Health(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a database, got %d", rec.Code)
	}
}

func TestNewEcho_SessionRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var view clti.CaseView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}

	body := `{"updates":[{"field":"abi","value":0.3}]}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/"+view.SessionID.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Snapshot.ILevel == nil || *view.Snapshot.ILevel != 3 {
		t.Errorf("expected I level 3, got %v", view.Snapshot.ILevel)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/fields", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionTopicAuthorizer(t *testing.T) {
	svc := clti.NewService(clti.NewCaseRepoMemory(), nil, zerolog.Nop())
	view := svc.Open("dr-a")
	topic := clti.SessionTopic(view.SessionID)
	allow := sessionTopicAuthorizer(svc)

	if !allow(&websocket.Client{UserID: "nurse-b", Roles: []string{auth.RoleNurse}}, topic) {
		t.Error("expected nurse to watch an open session")
	}
	if allow(&websocket.Client{UserID: "svc", Roles: []string{"billing"}}, topic) {
		t.Error("expected role without session read access to be denied")
	}
	if allow(&websocket.Client{UserID: "dr-a", Roles: []string{auth.RolePhysician}}, "session/unknown") {
		t.Error("expected unknown topic to be denied")
	}
}
