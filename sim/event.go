package sim

import "fmt"

// EventKind classifies a state transition recorded in the EventLog.
type EventKind int

const (
	EventArrival  EventKind = iota // NEW -> HANDOFF
	EventPromote                   // HANDOFF -> READY
	EventDispatch                  // READY -> RUNNING
	EventBlock                     // RUNNING -> BLOCKED
	EventUnblock                   // BLOCKED -> HANDOFF
	EventPreempt                   // RUNNING -> READY (quantum expired)
	EventFinish                    // RUNNING or BLOCKED -> TERMINATED
)

func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "Arrival"
	case EventPromote:
		return "Promote"
	case EventDispatch:
		return "Dispatch"
	case EventBlock:
		return "Block"
	case EventUnblock:
		return "Unblock"
	case EventPreempt:
		return "Preempt"
	case EventFinish:
		return "Finish"
	default:
		return "Unknown"
	}
}

// Event is one timestamped transition. Time is the label of the tick the
// transition happened in.
type Event struct {
	Time    int64
	Tick    int
	Kind    EventKind
	Process string
	From    ProcessState
	To      ProcessState
	Detail  string // optional, e.g. "1P1", "IO 30", "quantum 20"
}

// Description renders the event the way reports print it.
func (e Event) Description() string {
	msg := fmt.Sprintf("%s %s → %s", e.Process, e.From, e.To)
	if e.Kind == EventPreempt {
		msg = fmt.Sprintf("%s quantum expired → %s", e.Process, e.To)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e Event) String() string {
	return fmt.Sprintf("t=%d: %s", e.Time, e.Description())
}

// EventLog is an append-only record of transitions in chronological order.
type EventLog struct {
	events []Event
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{events: make([]Event, 0)}
}

// Append records an event. It is the only mutator.
func (l *EventLog) Append(e Event) {
	l.events = append(l.events, e)
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int { return len(l.events) }

// Events returns a copy of the log in append order.
func (l *EventLog) Events() []Event {
	return append([]Event(nil), l.events...)
}
