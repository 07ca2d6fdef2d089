// Package notify delivers short user-facing messages.
package notify

import (
	"fmt"
	"io"
	"log"
	"sync"
)

type Notification struct {
	Title       string
	Description string
	Destructive bool
}

type Notifier interface {
	Notify(n Notification)
}

// LogNotifier prints notifications to out and records them in the log.
type LogNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewLogNotifier(out io.Writer) *LogNotifier {
	return &LogNotifier{out: out}
}

func (l *LogNotifier) Notify(n Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prefix := ""
	if n.Destructive {
		prefix = "! "
	}
	if n.Description == "" {
		fmt.Fprintf(l.out, "%s%s\n", prefix, n.Title)
	} else {
		fmt.Fprintf(l.out, "%s%s: %s\n", prefix, n.Title, n.Description)
	}
	log.Printf("Notification: title=%q destructive=%t", n.Title, n.Destructive)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return Notification{}, false
	}
	return r.sent[len(r.sent)-1], true
}
