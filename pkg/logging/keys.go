package logging

const (
	// EnvLogLevel is the environment variable for the log level.
	EnvLogLevel = `LOG_LEVEL`
)

const (
	KeyAppName   = "app"
	KeyError     = "err"
	KeyDal       = "dal"
	KeyGuildID   = "guild_id"
	KeyChannelID = "channel_id"
	KeyUserID    = "user_id"
	KeyEvent     = "event"
	KeyComponent = "component"
)
