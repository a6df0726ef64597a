// pkg/logging/logging.go - setup audit log with a mirrored, colour-coded console.
//
// Every entry is written to a single text file as "HH:MM:SS [LEVEL] message",
// strictly in call order, and echoed to the console with a colour chosen by
// severity. The file is truncated and given a fresh header block each time
// Initialize is called.

package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level represents the severity of a log entry.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the label written between brackets in the log.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelSuccess:
		return "SUCCESS"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ErrSink is returned when the log file cannot be created or written at
// initialization.
var ErrSink = errors.New("log sink unavailable")

const (
	lineTimeLayout   = "15:04:05"
	headerTimeLayout = "2006-01-02 15:04:05"
)

var rule = strings.Repeat("=", 80)

// Header carries the machine facts written at the top of the log.
type Header struct {
	User              string
	Computer          string
	PowerShellVersion string
}

// Entry is one line of the log.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// String formats the entry as it appears in the log file.
func (e Entry) String() string {
	return fmt.Sprintf("%s [%s] %s", e.Time.Format(lineTimeLayout), e.Level, e.Message)
}

// Logger writes the setup log. The zero value is not usable; call New.
type Logger struct {
	mu         sync.Mutex
	path       string
	file       *os.File
	console    io.Writer
	errOut     io.Writer
	styles     map[Level]lipgloss.Style
	plain      lipgloss.Style
	start      time.Time
	now        func() time.Time
	sinkWarned bool
}

// New creates a Logger that mirrors entries to console. A nil console
// discards mirrored output.
func New(console io.Writer) *Logger {
	enableColors()

	if console == nil {
		console = io.Discard
	}
	r := lipgloss.NewRenderer(console)
	return &Logger{
		console: console,
		errOut:  os.Stderr,
		styles:  levelStyles(r),
		plain:   r.NewStyle(),
		now:     time.Now,
		start:   time.Now(),
	}
}

// levelStyles maps severities to console colours. INFO uses the terminal default.
func levelStyles(r *lipgloss.Renderer) map[Level]lipgloss.Style {
	return map[Level]lipgloss.Style{
		LevelInfo:    r.NewStyle(),
		LevelSuccess: r.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarning: r.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError:   r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// SetErrorOutput redirects the one-time sink failure warning.
func (l *Logger) SetErrorOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errOut = w
}

// Initialize creates the log directory, truncates the file at path and writes
// the header block. It also resets the start time used by Elapsed.
func (l *Logger) Initialize(path string, hdr Header) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: create log directory: %v", ErrSink, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("%w: open log file: %v", ErrSink, err)
	}

	l.start = l.now()
	if _, err := f.WriteString(formatHeader(l.start, hdr)); err != nil {
		f.Close()
		return fmt.Errorf("%w: write log header: %v", ErrSink, err)
	}

	l.file = f
	l.path = path
	l.sinkWarned = false
	return nil
}

func formatHeader(start time.Time, hdr Header) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("PC Setup & Package Installation Log\n")
	fmt.Fprintf(&b, "Started: %s\n", start.Format(headerTimeLayout))
	fmt.Fprintf(&b, "User: %s\n", orUnknown(hdr.User))
	fmt.Fprintf(&b, "Computer: %s\n", orUnknown(hdr.Computer))
	fmt.Fprintf(&b, "PowerShell Version: %s\n", orUnknown(hdr.PowerShellVersion))
	b.WriteString(rule + "\n\n")
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

// Log appends an entry to the file and mirrors it to the console.
func (l *Logger) Log(level Level, message string) {
	l.write(level, message, true)
}

// LogFileOnly appends an entry to the file without echoing it.
func (l *Logger) LogFileOnly(level Level, message string) {
	l.write(level, message, false)
}

func (l *Logger) write(level Level, message string, toConsole bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{Time: l.now().Truncate(time.Second), Level: level, Message: message}
	line := entry.String()

	if l.file == nil {
		l.sinkFailed(errors.New("log file is not open"))
	} else if _, err := l.file.WriteString(line + "\n"); err != nil {
		l.sinkFailed(err)
	}

	if toConsole {
		fmt.Fprintln(l.console, l.style(level).Render(line))
	}
}

func (l *Logger) style(level Level) lipgloss.Style {
	if s, ok := l.styles[level]; ok {
		return s
	}
	return l.plain
}

// sinkFailed warns about a lost log line once per Initialize; the run goes on.
func (l *Logger) sinkFailed(err error) {
	if l.sinkWarned {
		return
	}
	l.sinkWarned = true
	fmt.Fprintf(l.errOut, "WARNING: unable to write to log file %q: %v (further write errors suppressed)\n", l.path, err)
}

// Info logs an informational message.
func (l *Logger) Info(format string, v ...interface{}) {
	l.Log(LevelInfo, fmt.Sprintf(format, v...))
}

// Success logs a success message, shown in green.
func (l *Logger) Success(format string, v ...interface{}) {
	l.Log(LevelSuccess, fmt.Sprintf(format, v...))
}

// Warning logs a warning message, shown in yellow.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.Log(LevelWarning, fmt.Sprintf(format, v...))
}

// Error logs an error message, shown in red.
func (l *Logger) Error(format string, v ...interface{}) {
	l.Log(LevelError, fmt.Sprintf(format, v...))
}

// Banner logs a phase delimiter.
func (l *Logger) Banner(title string) {
	l.Log(LevelInfo, fmt.Sprintf("=== %s ===", title))
}

// Path returns the file the logger writes to.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Start returns the time recorded by the last Initialize.
func (l *Logger) Start() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.start
}

// Elapsed returns the time since the last Initialize.
func (l *Logger) Elapsed() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now().Sub(l.start)
}

// Close releases the log file. Later entries only reach the console.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
