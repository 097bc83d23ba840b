package constants

// DataFlash message types the summary reads.
const (
	MsgTypeMode  = "MODE"
	MsgTypeEvent = "EV"
	MsgTypeError = "ERR"
	MsgTypeGPS   = "GPS"
	MsgTypeBat   = "BAT"
)

// EventTypes are the message types projected into events, in extraction order.
var EventTypes = []string{MsgTypeMode, MsgTypeEvent, MsgTypeError}

// Field names.
const (
	FieldTimeUS   = "TimeUS"
	FieldTimeUSec = "time_usec"
	FieldTimeMS   = "TimeMS"
	FieldAlt      = "Alt"
	FieldVolt     = "Volt"
	FieldStatus   = "Status"
	FieldNSats    = "NSats"
	FieldSeverity = "Severity"
)

const (
	// GPSFix3D is the lowest fix status that is not reported as a GPS issue.
	GPSFix3D = 3
	// CriticalSeverity is the lowest ERR severity reported as critical.
	CriticalSeverity = 2
)
