package internal

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Reporter prints diagnostics to the user and keeps them for later queries.
type Reporter struct {
	out      io.Writer
	label    string
	mu       sync.Mutex
	messages []string
}

func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{
		out:   out,
		label: color.New(color.FgYellow, color.Bold).Sprint("WARNING:"),
	}
}

func (r *Reporter) Report(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	fmt.Fprintf(r.out, "%s\t%s\n", r.label, msg)
}

func (r *Reporter) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
