// Package trace emits a Chrome trace-event stream recording how long
// each pass invocation in the driver's fixed-point loop takes, so a
// slow configure run can be profiled the same way the teacher profiles
// its build.
package trace

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"
)

var start = time.Now()

var (
	sinkMu sync.Mutex
	sink   io.Writer = io.Discard
)

// Sink writes all following Event()s as a Chrome trace event file into w.
func Sink(w io.Writer) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	sink = w
	w.Write([]byte{'['})
}

// PendingEvent is one open span; call Done when the span ends.
type PendingEvent struct {
	Name           string      `json:"name"`
	Categories     string      `json:"cat"`
	Type           string      `json:"ph"`
	ClockTimestamp uint64      `json:"ts"`
	Duration       uint64      `json:"dur"`
	Pid            uint64      `json:"pid"`
	Tid            uint64      `json:"tid"`
	Args           interface{} `json:"args"`

	start time.Time
}

func (pe *PendingEvent) Done() {
	pe.Duration = uint64(time.Since(pe.start) / time.Microsecond)
	b, err := json.Marshal(pe)
	if err != nil {
		panic(err)
	}
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if _, err := sink.Write(append(b, ',')); err != nil {
		log.Printf("[trace] %v", err)
	}
}

// Event starts a span named name (typically a pass name) on logical
// thread tid. Pass records every span on tid 0.
func Event(name string, tid int) *PendingEvent {
	return &PendingEvent{
		Name:           name,
		Categories:     "pass",
		Type:           "X",
		ClockTimestamp: uint64(time.Since(start) / time.Microsecond),
		Tid:            uint64(tid),
		start:          time.Now(),
	}
}

// Pass runs fn and records its duration as a single span named name.
func Pass(name string, fn func() bool) bool {
	ev := Event(name, 0)
	progress := fn()
	ev.Args = map[string]bool{"progress": progress}
	ev.Done()
	return progress
}
