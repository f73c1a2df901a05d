package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of a log message.
type LogLevel string

const (
	Debug LogLevel = "DEBUG"
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

// Logger is the side channel components write diagnostics to.
// Clock faces and the state machine receive one at construction instead of
// reaching for package state, so tests can silence or capture them.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// minLevel is the minimum log level to output. Messages below this level are filtered.
var minLevel LogLevel = Info

// levelPriority returns the numeric priority of a log level (higher = more severe)
func levelPriority(level LogLevel) int {
	switch level {
	case Debug:
		return 0
	case Info:
		return 1
	case Warn:
		return 2
	case Error:
		return 3
	default:
		return 1
	}
}

// SetLevel sets the minimum log level. Valid values: "debug", "info", "warn", "error"
func SetLevel(level string) {
	mu.Lock()
	switch level {
	case "debug":
		minLevel = Debug
	case "info":
		minLevel = Info
	case "warn":
		minLevel = Warn
	case "error":
		minLevel = Error
	default:
		minLevel = Info
	}
	current := minLevel
	mu.Unlock()
	log.Printf("Log level set to: %s", current)
}

// LogEntry represents a single log message with metadata for streaming to clients.
type LogEntry struct {
	Timestamp string   `json:"timestamp"`
	Level     LogLevel `json:"level"`
	Message   string   `json:"message"`
}

var (
	listeners  []chan LogEntry
	mu         sync.Mutex
	fileLogger *lumberjack.Logger
)

func init() {
	listeners = make([]chan LogEntry, 0)
	// Default to stdout only until Init() is called with proper config
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
}

// Init initializes the logger with the specified log directory.
// Should be called after config is loaded.
func Init(logDir string) {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		log.Printf("Failed to create log directory: %v", err)
		return
	}

	fileLogger = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "unqlocked.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}

	log.SetOutput(io.MultiWriter(os.Stdout, fileLogger))
}

// Close flushes and closes the rotating log file, if any.
func Close() error {
	if fileLogger == nil {
		return nil
	}
	log.SetOutput(os.Stdout)
	return fileLogger.Close()
}

// Subscribe returns a channel that receives all log entries for real-time streaming.
func Subscribe() chan LogEntry {
	mu.Lock()
	defer mu.Unlock()
	ch := make(chan LogEntry, 100)
	listeners = append(listeners, ch)
	return ch
}

// Unsubscribe removes a log listener channel and closes it.
func Unsubscribe(ch chan LogEntry) {
	mu.Lock()
	defer mu.Unlock()
	for i, l := range listeners {
		if l == ch {
			listeners = append(listeners[:i], listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func broadcast(entry LogEntry) {
	mu.Lock()
	defer mu.Unlock()
	for _, ch := range listeners {
		select {
		case ch <- entry:
		default:
			// Drop message if channel is full to prevent blocking
		}
	}
}

// Log writes a formatted message at the specified level to stdout, file, and subscribers.
func Log(level LogLevel, format string, v ...interface{}) {
	mu.Lock()
	threshold := minLevel
	mu.Unlock()
	if levelPriority(level) < levelPriority(threshold) {
		return
	}

	msg := fmt.Sprintf(format, v...)
	timestamp := time.Now().Format(time.RFC3339)

	// Format: timestamp [LEVEL] message
	log.Printf("%s [%s] %s", timestamp, level, msg)

	broadcast(LogEntry{
		Timestamp: timestamp,
		Level:     level,
		Message:   msg,
	})
}

// Infof logs a formatted message at INFO level.
func Infof(format string, v ...interface{}) {
	Log(Info, format, v...)
}

// Errorf logs a formatted message at ERROR level.
func Errorf(format string, v ...interface{}) {
	Log(Error, format, v...)
}

// Debugf logs a formatted message at DEBUG level.
func Debugf(format string, v ...interface{}) {
	Log(Debug, format, v...)
}

// Warnf logs a formatted message at WARN level.
func Warnf(format string, v ...interface{}) {
	Log(Warn, format, v...)
}

type stdLogger struct {
	prefix string
}

// Std returns a Logger backed by the package-level logger. A non-empty prefix
// is prepended to every message, e.g. "StateMachine: ".
func Std(prefix string) Logger {
	return stdLogger{prefix: prefix}
}

func (l stdLogger) Debugf(format string, v ...interface{}) { Log(Debug, l.prefix+format, v...) }
func (l stdLogger) Infof(format string, v ...interface{})  { Log(Info, l.prefix+format, v...) }
func (l stdLogger) Warnf(format string, v ...interface{})  { Log(Warn, l.prefix+format, v...) }
func (l stdLogger) Errorf(format string, v ...interface{}) { Log(Error, l.prefix+format, v...) }

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
