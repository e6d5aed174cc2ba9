// Package logging provides leveled named loggers for the application
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel orders log severities; a logger emits messages at or below its
// configured level.
type LogLevel int

const (
	CRITICAL LogLevel = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

// --------------------------------------------------------------------------
// Logger Interface
// --------------------------------------------------------------------------

// ILogger is the logging interface handed out to packages
type ILogger interface {
	SetLevel(level LogLevel)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
}

// --------------------------------------------------------------------------
// Named Logger (implements ILogger)
// --------------------------------------------------------------------------

// namedLogger implements the ILogger interface with custom formatting
type namedLogger struct {
	name   string
	level  LogLevel
	logger *log.Logger
}

func (l *namedLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *namedLogger) Debugf(format string, args ...interface{}) {
	if l.level >= DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *namedLogger) Infof(format string, args ...interface{}) {
	if l.level >= INFO {
		l.log("INFO", format, args...)
	}
}

func (l *namedLogger) Warningf(format string, args ...interface{}) {
	if l.level >= WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *namedLogger) Errorf(format string, args ...interface{}) {
	if l.level >= ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *namedLogger) Panicf(format string, args ...interface{}) {
	if l.level >= CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *namedLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Registry
// --------------------------------------------------------------------------

var (
	registryMu sync.Mutex
	registry   = map[string]*namedLogger{}
)

// GetLogger returns the logger registered under pkgName, creating it with
// level INFO on first use. Loggers are shared: a level set here is seen by
// every holder of the same name.
func GetLogger(pkgName string) ILogger {
	registryMu.Lock()
	defer registryMu.Unlock()

	if l, ok := registry[pkgName]; ok {
		return l
	}

	stdLogger := log.New(os.Stdout, "", log.Ldate|log.Ltime)
	l := &namedLogger{
		name:   pkgName,
		level:  INFO,
		logger: stdLogger,
	}
	registry[pkgName] = l
	return l
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warning", "warn":
		return WARNING
	case "error":
		return ERROR
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of debug, info, warn, error", level))
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers sets the level of all application loggers
func InitLoggers(logLevel string) {
	level := ParseLogLevel(logLevel)

	GetLogger("counters").SetLevel(level)
	GetLogger("queue").SetLevel(level)
	GetLogger("protocol").SetLevel(level)
	GetLogger("watch").SetLevel(level)
	GetLogger("perf").SetLevel(level)
	GetLogger("util").SetLevel(level)
}
