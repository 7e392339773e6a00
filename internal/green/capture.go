package green

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// CaptureBundle is the offline interchange format for one scan session:
// the raw fragments plus the user's ball and hole marks. Green conditions
// travel alongside as an opaque payload the configuration layer decodes.
type CaptureBundle struct {
	CapturedAt time.Time       `json:"captured_at"`
	Fragments  []MeshFragment  `json:"fragments"`
	Ball       BallPosition    `json:"ball"`
	Hole       HolePosition    `json:"hole"`
	Conditions json.RawMessage `json:"conditions,omitempty"`
}

// fragmentJSON is the wire shape of a MeshFragment: flat coordinate
// triples, the way capture hardware emits them.
type fragmentJSON struct {
	Vertices        []float64 `json:"vertices"` // x0,y0,z0, x1,y1,z1, ...
	Normals         []float64 `json:"normals,omitempty"`
	Indices         []uint32  `json:"indices"`
	Classifications []int     `json:"classifications,omitempty"`
	Transform       []float64 `json:"transform,omitempty"` // 16 values, row-major
}

type positionJSON struct {
	Position []float64 `json:"position"` // x,y,z
	MarkedAt time.Time `json:"marked_at,omitempty"`
}

// UnmarshalJSON decodes the flat wire shape into vectors.
func (f *MeshFragment) UnmarshalJSON(data []byte) error {
	var w fragmentJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.Vertices)%3 != 0 {
		return fmt.Errorf("vertex array length %d is not a multiple of 3", len(w.Vertices))
	}
	if len(w.Normals)%3 != 0 {
		return fmt.Errorf("normal array length %d is not a multiple of 3", len(w.Normals))
	}
	if len(w.Indices)%3 != 0 {
		return fmt.Errorf("index array length %d is not a multiple of 3", len(w.Indices))
	}

	f.Vertices = unflatten(w.Vertices)
	f.Normals = unflatten(w.Normals)
	f.Indices = w.Indices
	f.Classifications = nil
	for _, c := range w.Classifications {
		f.Classifications = append(f.Classifications, Classification(c))
	}
	switch len(w.Transform) {
	case 0:
		f.Transform = IdentityTransform
	case 16:
		copy(f.Transform[:], w.Transform)
	default:
		return fmt.Errorf("transform must have 16 values, got %d", len(w.Transform))
	}
	return nil
}

// MarshalJSON encodes back to the flat wire shape.
func (f MeshFragment) MarshalJSON() ([]byte, error) {
	w := fragmentJSON{
		Vertices:  flatten(f.Vertices),
		Normals:   flatten(f.Normals),
		Indices:   f.Indices,
		Transform: f.Transform[:],
	}
	for _, c := range f.Classifications {
		w.Classifications = append(w.Classifications, int(c))
	}
	return json.Marshal(w)
}

func (p *BallPosition) UnmarshalJSON(data []byte) error {
	var w positionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v, err := vec3FromSlice(w.Position)
	if err != nil {
		return err
	}
	p.Position = v
	p.MarkedAt = w.MarkedAt
	return nil
}

func (p BallPosition) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{Position: []float64{p.Position.X, p.Position.Y, p.Position.Z}, MarkedAt: p.MarkedAt})
}

func (p *HolePosition) UnmarshalJSON(data []byte) error {
	var w positionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v, err := vec3FromSlice(w.Position)
	if err != nil {
		return err
	}
	p.Position = v
	p.MarkedAt = w.MarkedAt
	return nil
}

func (p HolePosition) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{Position: []float64{p.Position.X, p.Position.Y, p.Position.Z}, MarkedAt: p.MarkedAt})
}

func vec3FromSlice(s []float64) (Vec3, error) {
	if len(s) != 3 {
		return Vec3{}, fmt.Errorf("position must have 3 values, got %d", len(s))
	}
	return Vec3{s[0], s[1], s[2]}, nil
}

func unflatten(flat []float64) []Vec3 {
	out := make([]Vec3, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		out = append(out, Vec3{flat[i], flat[i+1], flat[i+2]})
	}
	return out
}

func flatten(vs []Vec3) []float64 {
	out := make([]float64, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}

// LoadCapture reads a capture bundle from a JSON file.
func LoadCapture(path string) (*CaptureBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture file: %w", err)
	}
	var bundle CaptureBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parse capture file: %w", err)
	}
	return &bundle, nil
}
