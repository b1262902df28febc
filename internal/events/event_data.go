package events

import "time"

// EventData is implemented by every event payload
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// ScanStartedData contains data for ScanStarted events
type ScanStartedData struct {
	ScanID      string `json:"scan_id"`
	Name        string `json:"name"`
	Instruments int    `json:"instruments"`
}

// EventType returns the event type for ScanStartedData
func (d *ScanStartedData) EventType() EventType {
	return ScanStarted
}

// ScanProgressData contains data for ScanProgress events
type ScanProgressData struct {
	ScanID    string `json:"scan_id"`
	Progress  int    `json:"progress"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Symbol    string `json:"symbol,omitempty"`
}

// EventType returns the event type for ScanProgressData
func (d *ScanProgressData) EventType() EventType {
	return ScanProgress
}

// ScanFinishedData contains data for ScanFinished events
type ScanFinishedData struct {
	ScanID            string        `json:"scan_id"`
	CompletionStatus  string        `json:"completion_status"`
	FailedInstruments []string      `json:"failed_instruments,omitempty"`
	Duration          time.Duration `json:"duration"`
}

// EventType returns the event type for ScanFinishedData
func (d *ScanFinishedData) EventType() EventType {
	return ScanFinished
}

// StatisticCreatedData contains data for StatisticCreated events
type StatisticCreatedData struct {
	StatisticID  string    `json:"statistic_id"`
	Date         time.Time `json:"date"`
	UniverseType string    `json:"universe_type"`
	ListID       int64     `json:"list_id,omitempty"`
	Updated      bool      `json:"updated"`
}

// EventType returns the event type for StatisticCreatedData
func (d *StatisticCreatedData) EventType() EventType {
	return StatisticCreated
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
