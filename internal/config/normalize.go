package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDestination(); err != nil {
		return err
	}
	if err := c.normalizeTool(); err != nil {
		return err
	}
	c.normalizeBagCheck()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDestination() error {
	c.Destination.Type = strings.ToLower(strings.TrimSpace(c.Destination.Type))
	if c.Destination.Type == "" {
		c.Destination.Type = DestinationDirectory
	}
	if strings.TrimSpace(c.Destination.Directory) != "" {
		expanded, err := expandPath(c.Destination.Directory)
		if err != nil {
			return fmt.Errorf("destination.directory: %w", err)
		}
		c.Destination.Directory = expanded
	}
	c.Destination.Bucket = strings.TrimSpace(c.Destination.Bucket)
	return nil
}

func (c *Config) normalizeTool() error {
	if strings.TrimSpace(c.Tool.Binary) == "" {
		c.Tool.Binary = defaultToolBinary
	}
	if strings.TrimSpace(c.Tool.PolicyDir) == "" {
		c.Tool.PolicyDir = defaultPolicyDir
	}
	expanded, err := expandPath(c.Tool.PolicyDir)
	if err != nil {
		return fmt.Errorf("tool.policy_dir: %w", err)
	}
	c.Tool.PolicyDir = expanded
	c.Tool.Detection = strings.ToLower(strings.TrimSpace(c.Tool.Detection))
	if c.Tool.Detection == "" {
		c.Tool.Detection = DetectionStdout
	}
	if c.Tool.Timeout <= 0 {
		c.Tool.Timeout = defaultToolTimeout
	}
	return nil
}

func (c *Config) normalizeBagCheck() {
	if strings.TrimSpace(c.BagCheck.Command) == "" {
		c.BagCheck.Command = defaultBagCheckCommand
		if len(c.BagCheck.Args) == 0 {
			c.BagCheck.Args = []string{"--validate"}
		}
	}
	if c.BagCheck.Timeout <= 0 {
		c.BagCheck.Timeout = defaultBagCheckTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.Endpoint = strings.TrimSpace(c.Notifications.Endpoint)
	c.Notifications.Topic = strings.TrimSpace(c.Notifications.Topic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// ExpandPath resolves a user-supplied path, expanding a leading tilde.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
