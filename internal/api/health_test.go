package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TheRibeiro/ApiWp/internal/domain"
)

type fakeStatus struct {
	connected bool
	state     domain.ConnectionState
}

func (f *fakeStatus) Connected() bool               { return f.connected }
func (f *fakeStatus) State() domain.ConnectionState { return f.state }

func TestHealthReportsConnectionState(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		state     domain.ConnectionState
	}{
		{"connected", true, domain.StateConnected},
		{"reconnecting", false, domain.StateConnecting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(&fakeStatus{connected: tt.connected, state: tt.state})

			w := httptest.NewRecorder()
			h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}

			var resp map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp["connected"] != tt.connected {
				t.Errorf("expected connected=%v, got %v", tt.connected, resp["connected"])
			}
			if resp["state"] != string(tt.state) {
				t.Errorf("expected state=%q, got %v", tt.state, resp["state"])
			}
			if resp["timestamp"] == "" {
				t.Error("expected a timestamp")
			}
		})
	}
}
