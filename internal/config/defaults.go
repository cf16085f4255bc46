package config

const (
	appName                     = "squish"
	defaultLevel                = 5
	defaultProcessPriority      = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultNotifyRequestTimeout = 10
	defaultPDFProfile           = "ebook"
	tempDirName                 = "squish"
)

// Default returns a Config populated with repository defaults. Directory
// fields left empty are resolved against the XDG base directories during
// normalization.
func Default() Config {
	return Config{
		Optimize: Optimize{
			Level:           defaultLevel,
			ProcessPriority: defaultProcessPriority,
		},
		Safety: Safety{
			KeepAttributes: true,
		},
		Kinds:    map[string]bool{},
		Preserve: map[string]bool{},
		Tuning: Tuning{
			JPEGProgressive: true,
			PDFProfile:      defaultPDFProfile,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
