// Package logging provides a small leveled component logger shared by the
// display, screen and routine layers.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the severity of a log message.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelOrder = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Entry is a single log record.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Component string
	Message   string
	Err       error
	Context   map[string]interface{}
}

// Formatter renders an entry for output.
type Formatter interface {
	Format(entry *Entry) string
}

// TextFormatter renders entries as human-readable lines.
type TextFormatter struct{}

func (f *TextFormatter) Format(entry *Entry) string {
	msg := fmt.Sprintf("[%s] %s [%s] %s",
		entry.Timestamp.Format("2006-01-02 15:04:05.000"),
		entry.Level, entry.Component, entry.Message)

	if entry.Err != nil {
		msg += fmt.Sprintf(" | error=%v", entry.Err)
	}
	for k, v := range entry.Context {
		msg += fmt.Sprintf(" %s=%v", k, v)
	}
	return msg + "\n"
}

// Logger writes leveled messages for one component.
type Logger struct {
	component string
	minLevel  Level
	outputs   []io.Writer
	formatter Formatter
	mu        sync.Mutex
}

// New creates a logger for a component, writing to stdout at info level.
func New(component string) *Logger {
	return &Logger{
		component: component,
		minLevel:  LevelInfo,
		outputs:   []io.Writer{os.Stdout},
		formatter: &TextFormatter{},
	}
}

// SetMinLevel lowers or raises the output threshold.
func (l *Logger) SetMinLevel(level Level) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
	return l
}

// AddOutput adds an extra output writer.
func (l *Logger) AddOutput(w io.Writer) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = append(l.outputs, w)
	return l
}

func (l *Logger) log(level Level, message string, err error, context map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if levelOrder[level] < levelOrder[l.minLevel] {
		return
	}

	formatted := l.formatter.Format(&Entry{
		Timestamp: time.Now(),
		Level:     level,
		Component: l.component,
		Message:   message,
		Err:       err,
		Context:   context,
	})
	for _, output := range l.outputs {
		output.Write([]byte(formatted))
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string) {
	l.log(LevelDebug, message, nil, nil)
}

// DebugWithContext logs a debug message with key-value context.
func (l *Logger) DebugWithContext(message string, context map[string]interface{}) {
	l.log(LevelDebug, message, nil, context)
}

// Info logs an info message.
func (l *Logger) Info(message string) {
	l.log(LevelInfo, message, nil, nil)
}

// InfoWithContext logs an info message with key-value context.
func (l *Logger) InfoWithContext(message string, context map[string]interface{}) {
	l.log(LevelInfo, message, nil, context)
}

// Warn logs a warning.
func (l *Logger) Warn(message string) {
	l.log(LevelWarn, message, nil, nil)
}

// Error logs an error message.
func (l *Logger) Error(message string, err error) {
	l.log(LevelError, message, err, nil)
}
