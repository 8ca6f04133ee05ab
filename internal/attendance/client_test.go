package attendance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCheckClockedIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/attendance/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["username"] != "jsmith" {
			t.Errorf("username = %v", body["username"])
		}
		json.NewEncoder(w).Encode(Status{IsClockedIn: true, ClockInTime: "2026-08-30T06:00:00Z"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, ModeEnforce)
	st := c.Check(42, "jsmith")
	if !st.IsClockedIn {
		t.Error("expected clocked in")
	}
	if err := c.Gate(42, "jsmith"); err != nil {
		t.Errorf("Gate: %v", err)
	}
}

func TestGateEnforceBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Status{IsClockedIn: false})
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, ModeEnforce).Gate(42, "jsmith"); err == nil {
		t.Error("enforce mode must block a driver who is not clocked in")
	}
	if err := NewClient(srv.URL, ModeWarn).Gate(42, "jsmith"); err != nil {
		t.Errorf("warn mode must not block: %v", err)
	}
}

func TestFailOpen(t *testing.T) {
	// server errors
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	if err := NewClient(srv.URL, ModeEnforce).Gate(42, "jsmith"); err != nil {
		t.Errorf("500 must fail open: %v", err)
	}

	// unreachable service
	c := NewClient("http://127.0.0.1:1", ModeEnforce)
	c.HTTP.Timeout = 200 * time.Millisecond
	if err := c.Gate(42, "jsmith"); err != nil {
		t.Errorf("unreachable must fail open: %v", err)
	}

	// malformed body
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv2.Close()
	if err := NewClient(srv2.URL, ModeEnforce).Gate(42, "jsmith"); err != nil {
		t.Errorf("bad body must fail open: %v", err)
	}
}

func TestModeOffSkipsCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, ModeOff)
	if err := c.Gate(42, "jsmith"); err != nil {
		t.Errorf("Gate off: %v", err)
	}
	if called {
		t.Error("mode off must not call the service")
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("enforce") != ModeEnforce || ParseMode("warn") != ModeWarn {
		t.Error("known modes must parse")
	}
	if ParseMode("") != ModeOff || ParseMode("bogus") != ModeOff {
		t.Error("unknown modes must default to off")
	}
}
