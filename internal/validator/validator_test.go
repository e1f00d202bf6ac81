package validator_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gatekeeper/internal/config"
	"gatekeeper/internal/ledger"
	"gatekeeper/internal/logging"
	"gatekeeper/internal/notify"
	"gatekeeper/internal/services"
	"gatekeeper/internal/structure"
	"gatekeeper/internal/testsupport"
	"gatekeeper/internal/transfer"
	"gatekeeper/internal/validator"
)

const testRefid = "0f1e2d3c4b5a69788796a5b4c3d2e1f0"

type capturedEvent struct {
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes"`
}

type eventRecorder struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (r *eventRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var event capturedEvent
		if err := json.NewDecoder(req.Body).Decode(&event); err != nil {
			t.Errorf("decode event: %v", err)
		}
		r.mu.Lock()
		r.events = append(r.events, event)
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (r *eventRecorder) all() []capturedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]capturedEvent(nil), r.events...)
}

type fixture struct {
	cfg      *config.Config
	storeDir string
	store    *transfer.LocalStore
	recorder *eventRecorder
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()

	recorder := &eventRecorder{}
	server := httptest.NewServer(recorder.handler(t))
	t.Cleanup(server.Close)

	base := append([]testsupport.ConfigOption{
		testsupport.WithSourceBucket("incoming"),
		testsupport.WithNotificationEndpoint(server.URL, "validation"),
	}, opts...)
	cfg := testsupport.NewConfig(t, base...)
	cfg.Tool.Binary = testsupport.PassingTool(t)
	cfg.BagCheck.Command = testsupport.PassingChecker(t)

	storeDir := t.TempDir()
	return &fixture{
		cfg:      cfg,
		storeDir: storeDir,
		store:    transfer.NewLocalStore(storeDir),
		recorder: recorder,
	}
}

func (f *fixture) run(t *testing.T, format structure.Format, sourceFilename string) validator.Result {
	t.Helper()

	v, err := validator.New(f.cfg, validator.Job{Format: format, SourceFilename: sourceFilename},
		logging.NewNop(), validator.WithStore(f.store))
	if err != nil {
		t.Fatal(err)
	}
	return v.Run(context.Background())
}

func (f *fixture) sourceKeys(t *testing.T) []string {
	t.Helper()
	keys, err := f.store.List(context.Background(), "incoming", "")
	if err != nil {
		t.Fatal(err)
	}
	return keys
}

func assertWorkDirEmpty(t *testing.T, cfg *config.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.Paths.WorkDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		t.Errorf("working directory not cleaned, found %s", entry.Name())
	}
}

func TestAudioPackageValidates(t *testing.T) {
	f := newFixture(t)
	key := testRefid + ".tar"
	testsupport.SeedSourceObject(t, f.storeDir, "incoming", key,
		testRefid+"_ma.wav", testRefid+"_a.mp3")

	result := f.run(t, structure.FormatAudio, key)
	if result.Err != nil {
		t.Fatalf("run failed: %v", result.Err)
	}
	if result.Outcome != notify.OutcomeSuccess {
		t.Fatalf("outcome = %q", result.Outcome)
	}

	events := f.recorder.all()
	if len(events) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(events))
	}
	if events[0].Attributes["outcome"] != notify.OutcomeSuccess {
		t.Errorf("notification outcome = %q", events[0].Attributes["outcome"])
	}
	if events[0].Attributes["refid"] != testRefid {
		t.Errorf("notification refid = %q", events[0].Attributes["refid"])
	}

	assertWorkDirEmpty(t, f.cfg)
	if keys := f.sourceKeys(t); len(keys) != 0 {
		t.Errorf("source object not deleted: %v", keys)
	}

	for _, name := range []string{testRefid + "_ma.wav", testRefid + "_a.mp3"} {
		relocated := filepath.Join(f.cfg.Destination.Directory, testRefid, name)
		if _, err := os.Stat(relocated); err != nil {
			t.Errorf("relocated file missing: %v", err)
		}
	}
}

func TestMultiReelAudioPackageValidates(t *testing.T) {
	f := newFixture(t)
	key := testRefid + ".tar.gz"
	testsupport.SeedSourceObject(t, f.storeDir, "incoming", key,
		testRefid+"_ma_01.wav", testRefid+"_ma_02.wav", testRefid+"_a.mp3")

	result := f.run(t, structure.FormatAudio, key)
	if result.Err != nil {
		t.Fatalf("run failed: %v", result.Err)
	}
	if _, err := os.Stat(filepath.Join(f.cfg.Destination.Directory, testRefid, testRefid+"_ma_02.wav")); err != nil {
		t.Errorf("relocated reel missing: %v", err)
	}
}

func TestVideoMissingMezzanineFails(t *testing.T) {
	f := newFixture(t)
	key := testRefid + ".tar"
	testsupport.SeedSourceObject(t, f.storeDir, "incoming", key,
		testRefid+"_ma.mkv", testRefid+"_a.mp4")

	result := f.run(t, structure.FormatVideo, key)
	if result.Err == nil {
		t.Fatal("expected failure")
	}
	if !errors.Is(result.Err, services.ErrAssetStructure) {
		t.Fatalf("error = %v", result.Err)
	}

	events := f.recorder.all()
	if len(events) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(events))
	}
	if events[0].Attributes["outcome"] != notify.OutcomeFailure {
		t.Errorf("notification outcome = %q", events[0].Attributes["outcome"])
	}
	if !strings.Contains(events[0].Attributes["message"], testRefid+"_me.mov") {
		t.Errorf("failure message does not name the missing file: %q", events[0].Attributes["message"])
	}

	assertWorkDirEmpty(t, f.cfg)
	if keys := f.sourceKeys(t); len(keys) != 1 {
		t.Errorf("source object should be retained after failure, found %v", keys)
	}
}

func TestConformanceFailureRetainsSource(t *testing.T) {
	f := newFixture(t)
	f.cfg.Tool.Binary = testsupport.FailingTool(t, "video stream is not FFV1")
	key := testRefid + ".tar"
	testsupport.SeedSourceObject(t, f.storeDir, "incoming", key,
		testRefid+"_ma.mkv", testRefid+"_me.mov", testRefid+"_a.mp4")

	result := f.run(t, structure.FormatVideo, key)
	if !errors.Is(result.Err, services.ErrConformance) {
		t.Fatalf("error = %v", result.Err)
	}
	if services.Kind(result.Err) != "format_conformance" {
		t.Errorf("kind = %q", services.Kind(result.Err))
	}
	if keys := f.sourceKeys(t); len(keys) != 1 {
		t.Errorf("source object should be retained after failure, found %v", keys)
	}
	if entries, err := os.ReadDir(f.cfg.Destination.Directory); err != nil || len(entries) != 0 {
		t.Errorf("destination should be empty: %v %v", entries, err)
	}
}

func TestBagCheckerFailure(t *testing.T) {
	f := newFixture(t)
	f.cfg.BagCheck.Command = testsupport.FailingChecker(t, "manifest-sha256.txt disagrees with payload")
	key := testRefid + ".tar"
	testsupport.SeedSourceObject(t, f.storeDir, "incoming", key,
		testRefid+"_ma.wav", testRefid+"_a.mp3")

	result := f.run(t, structure.FormatAudio, key)
	if !errors.Is(result.Err, services.ErrStructural) {
		t.Fatalf("error = %v", result.Err)
	}
	if !strings.Contains(result.Err.Error(), "manifest-sha256.txt disagrees") {
		t.Errorf("checker diagnostic not surfaced: %v", result.Err)
	}
	assertWorkDirEmpty(t, f.cfg)
}

func TestDestinationConflictKeepsExistingOutput(t *testing.T) {
	f := newFixture(t)
	existing := filepath.Join(f.cfg.Destination.Directory, testRefid, testRefid+"_a.mp3")
	testsupport.WriteFile(t, existing, "awaiting QC")

	key := testRefid + ".tar"
	testsupport.SeedSourceObject(t, f.storeDir, "incoming", key,
		testRefid+"_ma.wav", testRefid+"_a.mp3")

	result := f.run(t, structure.FormatAudio, key)
	if !errors.Is(result.Err, services.ErrDestinationConflict) {
		t.Fatalf("error = %v", result.Err)
	}
	if _, err := os.Stat(existing); err != nil {
		t.Errorf("pre-existing destination output was purged: %v", err)
	}
}

func TestInvalidRefidFailsBeforeDownload(t *testing.T) {
	f := newFixture(t)

	result := f.run(t, structure.FormatAudio, "not-a-refid.tar")
	if !errors.Is(result.Err, services.ErrIdentifier) {
		t.Fatalf("error = %v", result.Err)
	}
	events := f.recorder.all()
	if len(events) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(events))
	}
	if events[0].Attributes["error"] != "identifier" {
		t.Errorf("error attribute = %q", events[0].Attributes["error"])
	}
}

func TestBucketDestinationRelocatesPayload(t *testing.T) {
	f := newFixture(t, testsupport.WithBucketDestination("qc"))
	key := testRefid + ".tar"
	testsupport.SeedSourceObject(t, f.storeDir, "incoming", key,
		testRefid+"_ma.wav", testRefid+"_a.mp3")

	result := f.run(t, structure.FormatAudio, key)
	if result.Err != nil {
		t.Fatalf("run failed: %v", result.Err)
	}

	keys, err := f.store.List(context.Background(), "qc", testRefid+"/")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 relocated objects, got %v", keys)
	}
}

func TestLedgerRecordsTerminalOutcome(t *testing.T) {
	f := newFixture(t)
	store, err := ledger.Open(f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	key := testRefid + ".tar"
	testsupport.SeedSourceObject(t, f.storeDir, "incoming", key,
		testRefid+"_ma.wav", testRefid+"_a.mp3")

	v, err := validator.New(f.cfg, validator.Job{Format: structure.FormatAudio, SourceFilename: key},
		logging.NewNop(), validator.WithStore(f.store), validator.WithLedger(store))
	if err != nil {
		t.Fatal(err)
	}
	result := v.Run(context.Background())
	if result.Err != nil {
		t.Fatalf("run failed: %v", result.Err)
	}
	if v.State() != validator.StateDone {
		t.Errorf("terminal state = %q", v.State())
	}

	runs, err := store.ForRefid(context.Background(), testRefid)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Outcome != notify.OutcomeSuccess {
		t.Fatalf("ledger runs = %+v", runs)
	}
}
