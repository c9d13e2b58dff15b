package models

import "time"

// EventType categorizes session notifications.
type EventType string

const (
	// Capture events
	EventTypeCaptureLoaded EventType = "capture.loaded"
	EventTypeCaptureFailed EventType = "capture.failed"

	// Playback events
	EventTypePlaybackChanged EventType = "playback.changed"
	EventTypeFrameEmitted    EventType = "playback.frame"
	EventTypePlaybackDone    EventType = "playback.finished"

	// Activity events
	EventTypeIndicatorActive EventType = "activity.active"
	EventTypeIndicatorIdle   EventType = "activity.idle"

	// Filter events
	EventTypeFilterApplied EventType = "filter.applied"

	// Catalog events
	EventTypeCatalogLoaded EventType = "catalog.loaded"
	EventTypeCatalogFailed EventType = "catalog.failed"
)

// Event is a state-change notification published by a session.
type Event struct {
	// Type categorizes the event.
	Type EventType

	// Timestamp is when the event was published.
	Timestamp time.Time

	// SessionID identifies the capture session the event belongs to.
	SessionID string

	// ArbitrationID is set for frame and activity events.
	ArbitrationID string

	// Payload carries event-specific data (a playback snapshot, a frame, an error).
	Payload any
}
