package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gatekeeper/internal/config"
	"gatekeeper/internal/notify"
	"gatekeeper/internal/services"
)

const testRefid = "0f1e2d3c4b5a69788796a5b4c3d2e1f0"

type received struct {
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes"`
}

func newTestService(t *testing.T, events *[]received, paths *[]string) notify.Service {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev received
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode event: %v", err)
		}
		*events = append(*events, ev)
		if paths != nil {
			*paths = append(*paths, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.Endpoint = server.URL
	cfg.Notifications.Topic = "av-validation"
	return notify.NewService(&cfg)
}

func TestNotifySuccessAttributes(t *testing.T) {
	var events []received
	var paths []string
	svc := newTestService(t, &events, &paths)

	err := svc.NotifySuccess(context.Background(), "audio", testRefid, testRefid+".tar.gz")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if paths[0] != "/av-validation" {
		t.Fatalf("published to %q, want /av-validation", paths[0])
	}
	if ev.Message != "audio package "+testRefid+".tar.gz successfully validated" {
		t.Fatalf("message = %q", ev.Message)
	}
	want := map[string]string{
		"format":  "audio",
		"refid":   testRefid,
		"service": "digitized_av_validation",
		"outcome": "SUCCESS",
	}
	for key, value := range want {
		if ev.Attributes[key] != value {
			t.Fatalf("attribute %s = %q, want %q", key, ev.Attributes[key], value)
		}
	}
}

func TestNotifyFailureCarriesKindAndMessage(t *testing.T) {
	var events []received
	svc := newTestService(t, &events, nil)

	cause := services.Wrap(services.ErrAssetStructure, "asset_checking", "compare structure",
		"missing "+testRefid+"_me.mov", nil)
	err := svc.NotifyFailure(context.Background(), "video", testRefid, testRefid+".tar", cause)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Attributes["outcome"] != "FAILURE" {
		t.Fatalf("outcome = %q", ev.Attributes["outcome"])
	}
	if ev.Attributes["error"] != "asset_structure" {
		t.Fatalf("error kind = %q", ev.Attributes["error"])
	}
	if got := ev.Attributes["message"]; !strings.Contains(got, testRefid+"_me.mov") {
		t.Fatalf("message should name the missing file, got %q", got)
	}
}

func TestNotifyFailureEndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.Endpoint = server.URL
	cfg.Notifications.Topic = "av-validation"
	svc := notify.NewService(&cfg)

	if err := svc.NotifySuccess(context.Background(), "audio", testRefid, testRefid+".tar"); err == nil {
		t.Fatal("expected error for rejecting endpoint")
	}
}

func TestNoopWhenUnconfigured(t *testing.T) {
	cfg := config.Default()
	svc := notify.NewService(&cfg)
	if err := svc.NotifySuccess(context.Background(), "audio", testRefid, "x.tar"); err != nil {
		t.Fatalf("noop publisher should not error, got %v", err)
	}
}
