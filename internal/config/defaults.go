package config

const (
	defaultJournalDir          = "~/.local/share/shiftwalk"
	defaultKeepRuns            = 50
	defaultRequestTimeout      = 30
	defaultSite                = 1
	defaultUserAgent           = "shiftwalk/0.1"
	defaultCycleCount          = 25
	defaultPitchQuantity       = 40
	defaultPitchScrap          = 2
	defaultDispatchDescription = "Demonstration dispatch opened by shiftwalk"
	defaultReportLimit         = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Site:           defaultSite,
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
		},
		Demo: Demo{
			CycleCount:          defaultCycleCount,
			PitchQuantity:       defaultPitchQuantity,
			PitchScrap:          defaultPitchScrap,
			DispatchDescription: defaultDispatchDescription,
			ReportLimit:         defaultReportLimit,
		},
		Journal: Journal{
			Enabled:  true,
			Dir:      defaultJournalDir,
			KeepRuns: defaultKeepRuns,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
