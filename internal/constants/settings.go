package constants

const (
	// Settings keys
	SettingLogIntervalMin     = "log_interval_min"
	SettingLogTags            = "log_tags"
	SettingIsDebugMode        = "is_debug_mode"
	SettingWorkingDays        = "working_days"
	SettingWorkStartHour      = "work_start_hour"
	SettingWorkEndHour        = "work_end_hour"
	SettingBlockedDomains     = "blocked_domains"
	SettingWebAppURL          = "web_app_url"
	SettingIsDomainLogEnabled = "is_domain_log_enabled"
	SettingNotificationSound  = "notification_sound"
	SettingNotificationVolume = "notification_volume"
	SettingIsPomodoroEnabled  = "is_pomodoro_enabled"
	SettingTimezone           = "timezone"

	// Default Settings Values
	DefaultLogIntervalMin     = 15
	DefaultLogTags            = "Meeting\nFocus Time\nSlack\nJira Tasks\nEmailing\nBreak"
	DefaultIsDebugMode        = false
	DefaultWorkingDays        = "1,2,3,4,5"
	DefaultWorkStartHour      = 9
	DefaultWorkEndHour        = 18
	DefaultBlockedDomains     = "meet.google.com\nzoom.us\nyoutube.com\ntwitch.tv"
	DefaultWebAppURL          = ""
	DefaultIsDomainLogEnabled = false
	DefaultNotificationSound  = "ClickUp.wav"
	DefaultNotificationVolume = 0.5
	DefaultIsPomodoroEnabled  = true
	DefaultTimezone           = "Local" // Use system local timezone by default
)

const (
	// Local state keys
	StateLastLog         = "last_log"
	StateLastTag         = "last_tag"
	StateLastError       = "last_error"
	StateMRUTags         = "mru_tags"
	StateRecentLogs      = "recent_logs"
	StateLogsToday       = "logs_today"
	StateDriftedLogs     = "drifted_logs"
	StateTasksCompleted  = "tasks_completed"
	StateStatsDate       = "stats_date"
	StateActiveTask      = "active_task"
	StatePrefill         = "prefill"
	StateWeeklyCache     = "weekly_cache"
	StateLastWeeklyFetch = "last_weekly_fetch"
)
