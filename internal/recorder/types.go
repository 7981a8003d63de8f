package recorder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the raw recorder state reported by the service.
type Status struct {
	IsRecording bool `json:"is_recording"`
	IsPaused    bool `json:"is_paused"`
}

// Recording describes one stored recording. Name is the only handle the
// service accepts.
type Recording struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare file name.
func (r *Recording) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*r = Recording{Name: name}
		return nil
	}
	type plain Recording
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("recording entry without name")
	}
	*r = Recording(p)
	return nil
}

const (
	MinLoopCount = 1
	MaxLoopCount = 10
)

// ReplayRequest asks the service to replay a single recording.
type ReplayRequest struct {
	Recording string  `json:"recording"`
	Precision bool    `json:"precision"`
	LoopCount int     `json:"loop_count"`
	Speed     float64 `json:"speed"`
}

// Validate rejects requests the service would refuse, before any network
// call is made.
func (r ReplayRequest) Validate() error {
	if strings.TrimSpace(r.Recording) == "" {
		return Validation("replay", "no recording selected")
	}
	if r.LoopCount < MinLoopCount || r.LoopCount > MaxLoopCount {
		return Validation("replay", fmt.Sprintf("loop count must be between %d and %d", MinLoopCount, MaxLoopCount))
	}
	if !(r.Speed > 0) {
		return Validation("replay", "speed must be greater than zero")
	}
	return nil
}

// Reply is the generic acknowledgement envelope.
type Reply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StopReply carries the file the stopped session was written to.
type StopReply struct {
	Reply
	File string `json:"file,omitempty"`
}

// PauseReply reports the paused flag after a toggle.
type PauseReply struct {
	Reply
	IsPaused bool `json:"is_paused"`
}

// DeleteReply lists per-recording outcomes. Status may be "warning" when
// only some recordings were removed.
type DeleteReply struct {
	Reply
	Deleted []string `json:"deleted,omitempty"`
	Failed  []string `json:"failed,omitempty"`
}

type listReply struct {
	Reply
	Recordings []Recording `json:"recordings"`
}

type namesRequest struct {
	Recordings []string `json:"recordings"`
}

type categoryRequest struct {
	Recordings []string `json:"recordings"`
	Category   string   `json:"category"`
}

const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)
