// Package notify shows roster notices to the user.
package notify

import (
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/trezcool/masomo-roster/core"
)

type ConsoleNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	colors map[string]*color.Color
}

var _ core.Notifier = (*ConsoleNotifier)(nil)

// NewConsoleNotifier prints notices on out, colored by level when out is a terminal.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{
		out: out,
		colors: map[string]*color.Color{
			core.NoticeInfo:    color.New(color.FgCyan),
			core.NoticeSuccess: color.New(color.FgGreen),
			core.NoticeWarning: color.New(color.FgYellow),
			core.NoticeError:   color.New(color.FgRed, color.Bold),
		},
	}
}

func (n *ConsoleNotifier) Notify(notice core.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	c, ok := n.colors[notice.Level]
	if !ok {
		c = n.colors[core.NoticeInfo]
	}
	_, _ = c.Fprintf(n.out, "[%s] %s\n", notice.Level, notice.Message)
}

// Recorder keeps every notice in memory (tests, HTML banners).
type Recorder struct {
	mu      sync.Mutex
	notices []core.Notice
}

var _ core.Notifier = (*Recorder)(nil)

func (r *Recorder) Notify(notice core.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []core.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Notice(nil), r.notices...)
}

// Count returns how many notices of level were recorded.
func (r *Recorder) Count(level string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, notice := range r.notices {
		if notice.Level == level {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
