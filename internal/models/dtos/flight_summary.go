package dtos

import "encoding/json"

// Event is a MODE, EV or ERR record projected to a uniform shape.
type Event struct {
	Type string         `json:"type"`
	Time uint64         `json:"time"` // microseconds since boot, 0 when the record has none
	Data map[string]any `json:"data"`
}

// GPSIssue is one GPS sample below a 3-D fix.
type GPSIssue struct {
	Time       uint64 `json:"time"`
	Status     int64  `json:"status"`
	Satellites int64  `json:"satellites"`
}

// Degradation records an aggregator that fell back to its default.
type Degradation struct {
	Aggregator string
	Reason     string
}

// FlightSummary is the derived view of one log handed to the chat layer.
//
// A summary whose assembly failed carries only Error and MessageTypes and
// serializes to {"error": ..., "message_types": [...]}.
type FlightSummary struct {
	FlightTime     float64    `json:"flight_time"`
	MaxAltitude    float64    `json:"max_altitude"`
	MinBattery     float64    `json:"min_battery"`
	GPSIssues      []GPSIssue `json:"gps_issues"`
	CriticalErrors []Event    `json:"critical_errors"`
	ModeChanges    []Event    `json:"mode_changes"`
	MessageTypes   []string   `json:"message_types"`

	Error string `json:"error,omitempty"`

	Degradations []Degradation `json:"-"`
}

// IsMinimal reports whether this is the degraded error-only form.
func (s *FlightSummary) IsMinimal() bool {
	return s.Error != ""
}

func (s FlightSummary) MarshalJSON() ([]byte, error) {
	if s.Error != "" {
		types := s.MessageTypes
		if types == nil {
			types = []string{}
		}
		return json.Marshal(struct {
			Error        string   `json:"error"`
			MessageTypes []string `json:"message_types"`
		}{s.Error, types})
	}

	type plain FlightSummary
	return json.Marshal(plain(s))
}

// UploadResponse is returned by a successful log upload.
type UploadResponse struct {
	LogID   string         `json:"log_id"`
	Summary *FlightSummary `json:"summary"`
}
