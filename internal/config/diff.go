package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// VoiceTuningChanged is true when any calibration knob changed
	// (language, thresholds, ambient window, timeout). Recognizer backend
	// selection still requires a restart.
	VoiceTuningChanged bool

	// RecentLimitChanged is true when the status-endpoint history cap
	// changed.
	RecentLimitChanged bool
	NewRecentLimit     int
}

// Any reports whether the diff contains at least one hot-reloadable change.
func (d ConfigDiff) Any() bool {
	return d.LogLevelChanged || d.VoiceTuningChanged || d.RecentLimitChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Voice.Language != new.Voice.Language ||
		old.Voice.EnergyThreshold != new.Voice.EnergyThreshold ||
		!boolPtrEqual(old.Voice.DynamicThreshold, new.Voice.DynamicThreshold) ||
		old.Voice.AmbientDurationSeconds != new.Voice.AmbientDurationSeconds ||
		old.Voice.CallTimeoutSeconds != new.Voice.CallTimeoutSeconds {
		d.VoiceTuningChanged = true
	}

	if old.History.RecentLimit != new.History.RecentLimit {
		d.RecentLimitChanged = true
		d.NewRecentLimit = new.History.RecentLimit
	}

	return d
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
