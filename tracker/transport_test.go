package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestHTTPClientTrack(t *testing.T) {
	t.Parallel()
	var got TrackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analytics/track" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"pageViewId": "pv-99", "success": true})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	id, err := client.Track(context.Background(), TrackPayload{
		SessionID: "s1",
		PagePath:  "/projects/42",
		UserAgent: "test-agent",
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if id != "pv-99" {
		t.Fatalf("pageViewId = %q, want pv-99", id)
	}
	if got.SessionID != "s1" || got.PagePath != "/projects/42" {
		t.Fatalf("server received %+v", got)
	}
}

func TestHTTPClientTrackServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	if _, err := client.Track(context.Background(), TrackPayload{SessionID: "s1", PagePath: "/"}); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestHTTPClientUpdateTime(t *testing.T) {
	t.Parallel()
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analytics/update-time" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	if err := client.UpdateTime(context.Background(), "pv-1", 45); err != nil {
		t.Fatalf("UpdateTime: %v", err)
	}
	if body["pageViewId"] != "pv-1" || body["timeSpent"] != float64(45) {
		t.Fatalf("server received %v", body)
	}
}

func TestHTTPClientSendBeaconDoesNotBlock(t *testing.T) {
	t.Parallel()
	received := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(received) })
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)

	start := time.Now()
	client.SendBeacon("pv-1", 30)
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("SendBeacon blocked for %v", elapsed)
	}

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("beacon never delivered")
	}
}
