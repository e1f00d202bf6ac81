package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"gatekeeper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults to a directory destination and an empty notification endpoint,
// and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Destination.Type = config.DestinationDirectory
	cfgVal.Destination.Directory = filepath.Join(base, "qc")
	cfgVal.Tool.PolicyDir = filepath.Join(base, "policies")
	cfgVal.Notifications.Endpoint = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{cfgVal.Paths.WorkDir, cfgVal.Paths.LogDir, cfgVal.Tool.PolicyDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	if cfgVal.Destination.Type == config.DestinationDirectory {
		if err := os.MkdirAll(cfgVal.Destination.Directory, 0o755); err != nil {
			t.Fatalf("mkdir destination: %v", err)
		}
	}

	return builder.cfg
}

// WithSourceBucket sets the source bucket name on the test config.
func WithSourceBucket(bucket string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.SourceBucket = bucket
	}
}

// WithBucketDestination switches the test config to an object-store
// destination with the given bucket.
func WithBucketDestination(bucket string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Destination.Type = config.DestinationBucket
		b.cfg.Destination.Bucket = bucket
		b.cfg.Destination.Directory = ""
	}
}

// WithNotificationEndpoint points the test config at a notification endpoint,
// typically an httptest server URL.
func WithNotificationEndpoint(endpoint, topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.Endpoint = endpoint
		b.cfg.Notifications.Topic = topic
	}
}

// WithDetection selects the conformance tool detection strategy.
func WithDetection(detection string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tool.Detection = detection
	}
}
