package common

const (
	RedisKeySignalsPushed = "signals:pushed"
	RedisKeySignalsCache  = "signals:cache"
)
