package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// TimestampFormat is the ISO-8601 instant written as fullTimestamp, always
	// UTC. The fraction keeps every digit so the stamp is the exact instant,
	// and its fixed width keeps stamps sortable as strings.
	TimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"
)
