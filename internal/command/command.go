// Package command holds the capture command/result exchange between the
// operator frontend and the polling camera. The server cannot push to the
// camera, so the frontend issues a command here and the camera picks it up
// on its next poll; the recognition outcome flows back through the result
// slot the same way.
package command

import (
	"errors"
	"time"
)

// Mode tells the camera what to do with the next capture.
type Mode string

const (
	ModeAttendance Mode = "attendance"
	ModeRegister   Mode = "register"
	ModeLogout     Mode = "logout"
)

// ParseMode maps a wire string to a Mode. An empty string means attendance,
// matching what the camera sends when no X-Capture-Mode header is set.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeAttendance):
		return ModeAttendance, nil
	case string(ModeRegister):
		return ModeRegister, nil
	case string(ModeLogout):
		return ModeLogout, nil
	}
	return "", errors.New("invalid capture mode: " + s)
}

// ErrNameRequired is returned when a register command is issued without a
// student name.
var ErrNameRequired = errors.New("student name is required for registration")

// Registration carries the student metadata attached to a register command.
// Only the name is mandatory; the rest is optional guardian/contact info.
type Registration struct {
	StudentName   string
	YearLevel     string
	GuardianName  string
	GuardianEmail string
}

// Command is the single outstanding capture instruction.
type Command struct {
	Mode Mode
	Registration
	IssuedAt time.Time
	Pending  bool
}

// Result statuses as they appear on the wire.
const (
	StatusRegistered = "registered"
	StatusSuccess    = "success"
	StatusDuplicate  = "duplicate"
	StatusUnknown    = "unknown"
	StatusError      = "error"
	StatusTimeout    = "timeout"
	StatusWaiting    = "waiting"
)

// Result is the terminal outcome of one capture attempt, shaped for JSON.
type Result struct {
	Status     string   `json:"status"`
	Message    string   `json:"message,omitempty"`
	Name       string   `json:"name,omitempty"`
	LogType    string   `json:"log_type,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	RecordID   *int64   `json:"record_id,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
}

// PollResponse is what the camera sees when it asks for work.
type PollResponse struct {
	Status      string `json:"status"` // "capture" or "no_command"
	Mode        Mode   `json:"mode,omitempty"`
	StudentName string `json:"student_name,omitempty"`
}

const (
	PollStatusCapture   = "capture"
	PollStatusNoCommand = "no_command"
)
