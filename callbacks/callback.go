package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ llms.ToolObserver = (*Noop)(nil)
	_ llms.ToolObserver = (*Printer)(nil)
	_ llms.ToolObserver = (*PackageLogger)(nil)
	_ llms.ToolObserver = (*Fanout)(nil)
	_ llms.ToolObserver = (*Recorder)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout forwards tool events to multiple observers.
type Fanout struct {
	observers []llms.ToolObserver
}

func NewFanout(observers ...llms.ToolObserver) *Fanout {
	return &Fanout{observers: observers}
}

func (l *Fanout) Add(observer llms.ToolObserver) {
	l.observers = append(l.observers, observer)
}

func (l *Fanout) OnToolStart(ctx context.Context, name, args string) {
	for _, observer := range l.observers {
		observer.OnToolStart(ctx, name, args)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, name, args, result string) {
	for _, observer := range l.observers {
		observer.OnToolEnd(ctx, name, args, result)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, name, args string, err error) {
	for _, observer := range l.observers {
		observer.OnToolError(ctx, name, args, err)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnToolStart(ctx context.Context, name, args string)        {}
func (l *Noop) OnToolEnd(ctx context.Context, name, args, result string)  {}
func (l *Noop) OnToolError(ctx context.Context, name, args string, err error) {
}

// Printer writes tool events to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnToolStart(ctx context.Context, name, args string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s\n", name)
	fmt.Fprintf(l.Out, "Input: %s\n", args)
}

func (l *Printer) OnToolEnd(ctx context.Context, name, args, result string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s\n", name)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", result)
	}
}

func (l *Printer) OnToolError(ctx context.Context, name, args string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s: %s\n", name, err.Error())
}

// PackageLogger writes tool events to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnToolStart(ctx context.Context, name, args string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"tool", name,
		"input", args,
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, name, args, result string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"tool", name,
		"output", result,
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, name, args string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"tool", name,
		"err", err.Error(),
	)
}

// Event is one recorded tool event.
type Event struct {
	Kind   string
	Tool   string
	Args   string
	Result string
	Err    error
}

// Recorder accumulates tool events in memory for later inspection.
type Recorder struct {
	lock   sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Events returns a copy of the recorded events.
func (l *Recorder) Events() []Event {
	l.lock.Lock()
	defer l.lock.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *Recorder) OnToolStart(ctx context.Context, name, args string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.events = append(l.events, Event{Kind: "start", Tool: name, Args: args})
}

func (l *Recorder) OnToolEnd(ctx context.Context, name, args, result string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.events = append(l.events, Event{Kind: "end", Tool: name, Args: args, Result: result})
}

func (l *Recorder) OnToolError(ctx context.Context, name, args string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.events = append(l.events, Event{Kind: "error", Tool: name, Args: args, Err: err})
}
