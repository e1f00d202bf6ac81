package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Errors here abort the process
// before any package is attempted.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateDestination(); err != nil {
		return err
	}
	if err := c.validateTool(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.SourceBucket) == "" {
		return errors.New("storage.source_bucket must be set")
	}
	if strings.TrimSpace(c.Storage.Endpoint) == "" {
		return errors.New("storage.endpoint must be set")
	}
	return nil
}

func (c *Config) validateDestination() error {
	switch c.Destination.Type {
	case DestinationDirectory:
		if strings.TrimSpace(c.Destination.Directory) == "" {
			return errors.New("destination.directory must be set when destination.type is \"directory\"")
		}
	case DestinationBucket:
		if strings.TrimSpace(c.Destination.Bucket) == "" {
			return errors.New("destination.bucket must be set when destination.type is \"bucket\"")
		}
	default:
		return fmt.Errorf("destination.type: unsupported value %q (expected %q or %q)",
			c.Destination.Type, DestinationDirectory, DestinationBucket)
	}
	return nil
}

func (c *Config) validateTool() error {
	switch c.Tool.Detection {
	case DetectionStdout, DetectionExitCode:
	default:
		return fmt.Errorf("tool.detection: unsupported value %q (expected %q or %q)",
			c.Tool.Detection, DetectionStdout, DetectionExitCode)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.Endpoint != "" && c.Notifications.Topic == "" {
		return errors.New("notifications.topic must be set when notifications.endpoint is set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
