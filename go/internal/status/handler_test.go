package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mcdev12/workshop/go/internal/models"
	"github.com/mcdev12/workshop/go/internal/session/reconcile"
)

type stubProvider struct {
	status reconcile.Status
	err    error
}

func (s stubProvider) Status(context.Context) (reconcile.Status, error) {
	return s.status, s.err
}

func TestHandleGetState(t *testing.T) {
	provider := stubProvider{status: reconcile.Status{
		Role:             reconcile.RoleParticipant,
		Screen:           "voting",
		Phase:            models.PhaseVoting,
		PresentingTeamID: "T1",
		TimerRemaining:   12,
	}}
	srv := httptest.NewServer(NewServer("", nil, provider).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["phase"] != "VOTING" || got["screen"] != "voting" || got["timer_remaining_sec"] != float64(12) {
		t.Fatalf("body = %v", got)
	}
}

func TestHandleGetState_Errors(t *testing.T) {
	cases := []struct {
		name     string
		method   string
		provider stubProvider
		want     int
	}{
		{name: "wrong method", method: http.MethodPost, want: http.StatusMethodNotAllowed},
		{name: "controller stopped", method: http.MethodGet, provider: stubProvider{err: errors.New("stopped")}, want: http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewStateHandler(tc.provider).HandleGetState(rec, httptest.NewRequest(tc.method, "/api/state", nil))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestServer_HealthAndCORS(t *testing.T) {
	srv := httptest.NewServer(NewServer("", []string{"https://overlay.example"}, stubProvider{}).Handler)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("Origin", "https://overlay.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://overlay.example" {
		t.Fatalf("allow origin = %q", got)
	}

	req.Header.Set("Origin", "https://elsewhere.example")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}
