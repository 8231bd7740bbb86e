// Package cli provides terminal output helpers for the laborder command:
// colored notifications, a spinner for remote calls, confirmation prompts and
// shell completion.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// Notifier prints notifications to a writer, colored when it is a terminal.
type Notifier struct {
	mu       sync.Mutex
	writer   io.Writer
	colorize bool
}

// NewNotifier creates a notifier on w.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{writer: w, colorize: isTerminal(w)}
}

// Success prints a success message
func (n *Notifier) Success(message string) {
	n.print(ColorGreen, "✓", message)
}

// Error prints an error message
func (n *Notifier) Error(message string) {
	n.print(ColorRed, "✗", message)
}

func (n *Notifier) print(color, mark, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.colorize {
		fmt.Fprintf(n.writer, "%s%s%s %s\n", color, mark, ColorReset, message)
		return
	}
	fmt.Fprintf(n.writer, "%s %s\n", mark, message)
}

// Spinner represents a loading spinner
type Spinner struct {
	frames   []string
	current  int
	prefix   string
	mu       sync.Mutex
	writer   io.Writer
	active   bool
	colorize bool
	done     chan struct{}
}

// NewSpinner creates a spinner on w. It only animates when w is a terminal.
func NewSpinner(w io.Writer, prefix string) *Spinner {
	return &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		prefix:   prefix,
		writer:   w,
		colorize: isTerminal(w),
		done:     make(chan struct{}),
	}
}

// Start starts the spinner
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active || !s.colorize {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				if !s.active {
					s.mu.Unlock()
					return
				}
				s.render()
				s.current = (s.current + 1) % len(s.frames)
				s.mu.Unlock()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop stops the spinner and clears its line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}

	s.active = false
	close(s.done)

	fmt.Fprint(s.writer, "\r"+strings.Repeat(" ", 80)+"\r")
}

func (s *Spinner) render() {
	frame := ColorCyan + s.frames[s.current] + ColorReset
	fmt.Fprintf(s.writer, "\r%s %s", frame, s.prefix)
}

// Colorize wraps text in color when w is a terminal.
func Colorize(w io.Writer, text string, color string) string {
	if !isTerminal(w) {
		return text
	}
	return color + text + ColorReset
}

// isTerminal checks if w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
