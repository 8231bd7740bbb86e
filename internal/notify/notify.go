// Package notify carries user-visible, transient notifications from the
// stores to whatever front end is rendering them.
package notify

import (
	"sync"

	"github.com/R3E-Network/lab_order/pkg/logger"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows a short message to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Message is one recorded notification.
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(message string) { r.add(LevelSuccess, message) }
func (r *Recorder) Error(message string)   { r.add(LevelError, message) }

func (r *Recorder) add(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: text})
}

// Messages returns a copy of all recorded notifications.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Errors returns the texts of recorded error notifications.
func (r *Recorder) Errors() []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Level == LevelError {
			out = append(out, m.Text)
		}
	}
	return out
}

// Reset drops all recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}

// Log sends notifications to a logger.
type Log struct {
	log *logger.Logger
}

// NewLog creates a notifier writing to log.
func NewLog(log *logger.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Success(message string) { l.log.WithField("notify", LevelSuccess).Info(message) }
func (l *Log) Error(message string)   { l.log.WithField("notify", LevelError).Warn(message) }

// Discard drops every notification.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}
