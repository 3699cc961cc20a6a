package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// 级别从低到高：debug < info < warn < error。
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	level int32 = LevelInfo
	std         = log.New(os.Stderr, "", log.LstdFlags|log.LUTC)
)

// SetLevel 按名称设置全局日志级别，未知名称回落到 info。
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		atomic.StoreInt32(&level, LevelDebug)
	case "warn", "warning":
		atomic.StoreInt32(&level, LevelWarn)
	case "error":
		atomic.StoreInt32(&level, LevelError)
	default:
		atomic.StoreInt32(&level, LevelInfo)
	}
}

func logf(lv int32, tag, format string, args ...any) {
	if lv < atomic.LoadInt32(&level) {
		return
	}
	std.Output(3, tag+" "+fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...any) { logf(LevelDebug, "[DEBUG]", format, args...) }
func Infof(format string, args ...any)  { logf(LevelInfo, "[INFO]", format, args...) }
func Warnf(format string, args ...any)  { logf(LevelWarn, "[WARN]", format, args...) }
func Errorf(format string, args ...any) { logf(LevelError, "[ERROR]", format, args...) }
