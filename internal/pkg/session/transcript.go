package session

import (
	"strings"
	"sync"

	"lockstep/internal/pkg/protocol"
)

// Entry is one accepted message, in acceptance order.
type Entry struct {
	Seq      int
	Identity uint8
	Message  protocol.Message
}

// Transcript records accepted messages for the lifetime of the process.
type Transcript interface {
	Record(identity uint8, msg protocol.Message) Entry
	Entries() []Entry
}

// MemoryTranscript is an in-memory Transcript safe for concurrent use.
type MemoryTranscript struct {
	entries []Entry
	mu      sync.RWMutex
}

// NewMemoryTranscript creates an empty MemoryTranscript.
func NewMemoryTranscript() *MemoryTranscript {
	return &MemoryTranscript{}
}

// Record appends an accepted message and returns the stored entry.
func (t *MemoryTranscript) Record(identity uint8, msg protocol.Message) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry := Entry{
		Seq:      len(t.entries),
		Identity: identity,
		Message:  msg,
	}
	t.entries = append(t.entries, entry)
	return entry
}

// Entries returns a copy of the accepted messages in acceptance order.
func (t *MemoryTranscript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cpy := make([]Entry, len(t.entries))
	copy(cpy, t.entries)
	return cpy
}

// Identities returns the accepting identity of each entry in order.
func Identities(entries []Entry) []uint8 {
	ids := make([]uint8, len(entries))
	for i := range entries {
		ids[i] = entries[i].Identity
	}
	return ids
}

// String renders entries in their wire form, space separated.
func String(entries []Entry) string {
	arr := make([]string, len(entries))
	for i := range entries {
		arr[i] = entries[i].Message.String()
	}
	return strings.Join(arr, " ")
}
