package config

// Storage backends.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
)

// Capture sync modes.
const (
	SyncAuto   = "auto"
	SyncManual = "manual"
)

const (
	defaultConfigPath   = "~/.config/autoprotocol/config.toml"
	defaultDataDir      = "~/.local/share/autoprotocol"
	defaultLogDir       = "~/.local/share/autoprotocol/logs"
	defaultSQLiteName   = "blobs.db"
	defaultProtocolName = "protocol"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"

	dataDirEnv = "AUTOPROTOCOL_DATA_DIR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Storage: Storage{
			Backend: BackendFS,
		},
		Capture: Capture{
			SyncMode:       SyncManual,
			EnforceCeiling: true,
		},
		Protocol: Protocol{
			DefaultName: defaultProtocolName,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
