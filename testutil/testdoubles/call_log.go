package testdoubles

import (
	"sync"
)

// CallLog records the order in which handlers start and finish, across all spies sharing it.
type CallLog struct {
	entries []string
	mu      sync.Mutex
}

func NewCallLog() *CallLog {
	return &CallLog{entries: make([]string, 0)}
}

func (l *CallLog) record(entry string) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the recorded entries, e.g. ["A started", "A finished", "B started", ...].
func (l *CallLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.entries...)
}

// Started is the entry recorded when the handler with the given name is invoked.
func Started(name string) string {
	return name + " started"
}

// Finished is the entry recorded when the handler with the given name returns.
func Finished(name string) string {
	return name + " finished"
}
