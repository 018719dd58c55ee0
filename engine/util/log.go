package util

var GLOBAL_LOG_LEVEL = LogLevelError
var GLOBAL_LOG_CATEGORIES = LogHistory | LogQuery | LogCapture | LogSystem

type LogLevel int

const (
	LogLevelError LogLevel = 1 << iota
	LogLevelWarning
	LogLevelDebug
	LogLevelInfo
)

type LogCategory int

const (
	LogHistory LogCategory = 1 << iota
	LogQuery
	LogCapture
	LogWorker
	LogSystem
)

func log(cat LogCategory, lvl LogLevel, txt string) {
	if lvl > GLOBAL_LOG_LEVEL {
		return
	}
	if GLOBAL_LOG_CATEGORIES&cat == 0 {
		return
	}
	println(txt)
}

func LogHistoryInfo(txt string) {
	log(LogHistory, LogLevelInfo, txt)
}

func LogHistoryDebug(txt string) {
	log(LogHistory, LogLevelDebug, txt)
}

func LogQueryInfo(txt string) {
	log(LogQuery, LogLevelInfo, txt)
}

func LogQueryDebug(txt string) {
	log(LogQuery, LogLevelDebug, txt)
}

func LogQueryError(txt string) {
	log(LogQuery, LogLevelError, txt)
}

func LogCaptureDebug(txt string) {
	log(LogCapture, LogLevelDebug, txt)
}

func LogCaptureWarning(txt string) {
	log(LogCapture, LogLevelWarning, txt)
}

func LogWorkerDebug(txt string) {
	log(LogWorker, LogLevelDebug, txt)
}

func LogSystemInfo(txt string) {
	log(LogSystem, LogLevelInfo, txt)
}

func LogSystemError(txt string) {
	log(LogSystem, LogLevelError, txt)
}
