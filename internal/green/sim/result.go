package sim

import "github.com/fairway-data/greenread/internal/green"

// Status is the terminal state of one simulated putt.
type Status string

const (
	StatusHoled       Status = "holed"
	StatusStopped     Status = "stopped"
	StatusOutOfBounds Status = "out_of_bounds"
	StatusTimeout     Status = "timeout"
	StatusLipOut      Status = "lip_out"
)

// PathPoint is one sparse sample of the simulated trajectory.
type PathPoint struct {
	Position green.Vec3 `json:"position"`
	Velocity green.Vec2 `json:"velocity"`
	Time     float64    `json:"time"`
}

// Result is the outcome of one simulated putt. Every call to Simulate
// produces a fresh value; results are never mutated after return.
type Result struct {
	Path          []PathPoint `json:"path"`
	FinalPosition green.Vec3  `json:"final_position"`
	Status        Status      `json:"status"`

	// EntrySpeed and EntryOffset are valid only when Status is
	// StatusHoled.
	EntrySpeed  float64 `json:"entry_speed,omitempty"`
	EntryOffset float64 `json:"entry_offset,omitempty"`

	// ClosestApproach is the minimum horizontal distance to the hole
	// centre seen over the whole run.
	ClosestApproach float64 `json:"closest_approach"`

	// LippedOut reports that the ball entered the capture zone but was
	// not captured at any point during the run.
	LippedOut bool `json:"lipped_out"`
}

// Holed is a convenience accessor.
func (r *Result) Holed() bool { return r.Status == StatusHoled }
