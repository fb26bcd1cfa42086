package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Logger groups the levelled loggers used across the monitor.
type Logger struct {
	InfoLog  *log.Logger
	WarnLog  *log.Logger
	ErrorLog *log.Logger

	up   lipgloss.Style
	down lipgloss.Style
}

// New creates a Logger writing to w. Colour is only used when w is a terminal.
func New(w io.Writer) *Logger {
	r := lipgloss.NewRenderer(w)
	flags := log.LstdFlags | log.Lmsgprefix
	return &Logger{
		InfoLog:  log.New(w, "INFO ", flags),
		WarnLog:  log.New(w, "WARN ", flags),
		ErrorLog: log.New(w, "ERROR ", flags),
		up:       r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}),
		down:     r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}),
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard)
}

// Status renders the UP/DOWN label for a check outcome.
func (l *Logger) Status(up bool) string {
	if up {
		return l.up.Render("UP")
	}
	return l.down.Render("DOWN")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the writer log output should go to. Output always reaches
// stdout; when logFilePath is set it is appended to that file as well.
func Open(logFilePath string) (io.Writer, io.Closer, error) {
	if logFilePath == "" {
		return os.Stdout, nopCloser{}, nil
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file '%s': %w", logFilePath, err)
	}
	return io.MultiWriter(os.Stdout, file), file, nil
}
