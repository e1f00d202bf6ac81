package config

// Destination topologies.
const (
	DestinationDirectory = "directory"
	DestinationBucket    = "bucket"
)

// Conformance tool detection strategies.
const (
	DetectionStdout   = "stdout"
	DetectionExitCode = "exitcode"
)

const (
	defaultWorkDir         = "~/.local/share/gatekeeper/work"
	defaultLogDir          = "~/.local/share/gatekeeper/logs"
	defaultToolBinary      = "mediaconch"
	defaultPolicyDir       = "mediaconch_policies"
	defaultToolTimeout     = 600
	defaultBagCheckCommand = "bagit.py"
	defaultBagCheckTimeout = 1800
	defaultRequestTimeout  = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Storage: Storage{
			UseSSL: true,
		},
		Destination: Destination{
			Type: DestinationDirectory,
		},
		Tool: Tool{
			Binary:    defaultToolBinary,
			PolicyDir: defaultPolicyDir,
			Detection: DetectionStdout,
			Timeout:   defaultToolTimeout,
		},
		BagCheck: BagCheck{
			Command: defaultBagCheckCommand,
			Args:    []string{"--validate"},
			Timeout: defaultBagCheckTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
