// Package events provides event management functionality.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	ScanStarted      EventType = "SCAN_STARTED"
	ScanProgress     EventType = "SCAN_PROGRESS"
	ScanFinished     EventType = "SCAN_FINISHED"
	StatisticCreated EventType = "STATISTIC_CREATED"
	ErrorOccurred    EventType = "ERROR_OCCURRED"
)

// Event is a typed event as delivered to subscribers
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data,omitempty"`
}
