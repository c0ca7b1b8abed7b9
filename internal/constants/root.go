package constants

import "time"

const (
	AppName            = "wurkwurk"
	DefaultKeyringUser = "database-connection"
	TokenKeyringUser   = "web-app-token"
	DefaultConfigPath  = "~/.config/wurkwurk/wurkwurk.db"
	Version            = "v3.2.0"

	// Alarm names
	AlarmWorkLog  = "workLogAlarm"
	AlarmSnooze   = "snoozeAlarm"
	AlarmMidnight = "midnightReset"

	// SettingsProbeDelay is the first-fire delay used after settings change or startup.
	SettingsProbeDelay = 1 * time.Minute

	// Submission retry policy
	SubmitMaxAttempts       = 3
	SubmitBaseDelay         = 2 * time.Second
	SubmitBackoffMultiplier = 2
	HTTPTimeout             = 30 * time.Second

	// Bounded local state
	MaxMRUTags    = 3
	MaxRecentLogs = 50

	// Prompt defaults
	CloseSnoozeMinutes    = 5
	LogAndSnoozeMinutes   = 30
	BreakTag              = "Break"
	DoingSamePrefix       = "↑ "
	GapNotApplicable      = "N/A"
	WeeklyCacheTTL        = 10 * time.Minute
	NotificationTitle     = "WurkWurk: Time to Log Your Work"
	NotificationMessage   = "Log your last task and keep your streak going."
	NotificationDuration  = 5000
	NotifierLockfileName  = "wurkwurk-notifier.lock"
	TrayAppIdentifier     = "com.julianstephens.wurkwurk"
	TrayProcessName       = "wurkwurk-tray"
	SignalDirName         = "signals"
	DiagnosticsMinVersion = 3.2
	DiagnosticsURLPrefix  = "https://script.google.com/"
)

// SnoozeChoices are the snooze options offered by the prompt. A value <= 0 skips.
var SnoozeChoices = []int{5, 10, 30, 60, -1}

// ProtectedURLPrefixes are pages the collector cannot be shown on.
var ProtectedURLPrefixes = []string{"chrome-extension://", "chrome://"}

// RequiredSheetHeaders is the column order the web app's sheet must have.
var RequiredSheetHeaders = []string{
	"Date", "Time", "Log Entry", "Tag", "Drifted",
	"Mins Since Last", "FullTimestamp", "Domain", "Reactive", "Keywords",
}
