package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateProtocol(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendFS:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path must be set when storage.backend is sqlite")
		}
	default:
		return fmt.Errorf("storage.backend must be one of %s, %s (got %q)", BackendFS, BackendSQLite, c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateCapture() error {
	switch c.Capture.SyncMode {
	case SyncAuto, SyncManual:
		return nil
	default:
		return fmt.Errorf("capture.sync_mode must be one of %s, %s (got %q)", SyncAuto, SyncManual, c.Capture.SyncMode)
	}
}

func (c *Config) validateProtocol() error {
	if strings.ContainsAny(c.Protocol.DefaultName, `/\`) {
		return errors.New("protocol.default_name must not contain path separators")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}
