package config

const (
	defaultQuarantineDirName = "_flackit_quarantine"
	defaultLogDir            = "~/.local/share/flackit/logs"
	defaultJournalPath       = "~/.local/share/flackit/journal.db"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"

	// defaultPaddingThreshold is the padding size above which a warning is
	// reported. Padding up to this size is normal tag-edit headroom.
	defaultPaddingThreshold = 64 * 1024

	defaultEncodeTimeout   = 600 // seconds
	defaultRetries         = 1
	defaultDurationEpsilon = 0.1 // seconds
)

func defaultEncoders() []string {
	return []string{"flac", "ffmpeg"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			QuarantineDirName: defaultQuarantineDirName,
			LogDir:            defaultLogDir,
			JournalPath:       defaultJournalPath,
		},
		Analysis: Analysis{
			PaddingThresholdBytes: defaultPaddingThreshold,
			FrameScan:             true,
		},
		Repair: Repair{
			Encoders:        defaultEncoders(),
			EncodeTimeout:   defaultEncodeTimeout,
			Retries:         defaultRetries,
			DurationEpsilon: defaultDurationEpsilon,
		},
		Dedupe: Dedupe{
			DecodeMissingSignatures: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
