// Package models defines the domain types for Cortex.
package models

import "fmt"

// SyncStatus tracks whether a local record has been confirmed by the remote API.
type SyncStatus string

const (
	StatusSynced   SyncStatus = "synced"
	StatusPending  SyncStatus = "pending"
	StatusConflict SyncStatus = "conflict"
)

// EntityKind identifies the per-type partition a record belongs to.
type EntityKind string

const (
	KindNote       EntityKind = "note"
	KindTask       EntityKind = "task"
	KindHabit      EntityKind = "habit"
	KindHabitEntry EntityKind = "habitEntry"
	KindDecision   EntityKind = "decision"
)

// Kinds lists every entity partition in a stable order.
var Kinds = []EntityKind{KindNote, KindTask, KindHabit, KindHabitEntry, KindDecision}

// Valid reports whether k is a known entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case KindNote, KindTask, KindHabit, KindHabitEntry, KindDecision:
		return true
	}
	return false
}

// Operation is the mutation type captured in a sync queue item.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	switch op {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// TempIDPrefix marks locally created keys not yet confirmed by the remote API.
const TempIDPrefix = "temp_"

// IsTempID reports whether id is a provisional local identifier.
func IsTempID(id string) bool {
	return len(id) > len(TempIDPrefix) && id[:len(TempIDPrefix)] == TempIDPrefix
}

// ParseEntityKind converts a string tag into an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("models: unknown entity kind %q", s)
	}
	return k, nil
}
