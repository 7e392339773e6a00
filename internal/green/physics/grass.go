package physics

import "fmt"

// GrassType identifies the turf cultivar, which sets how strongly grain
// biases ball speed and deflects the roll.
type GrassType string

const (
	GrassBent    GrassType = "bent"
	GrassPoa     GrassType = "poa"
	GrassBermuda GrassType = "bermuda"
	GrassFescue  GrassType = "fescue"
	GrassRye     GrassType = "rye"
	GrassZoysia  GrassType = "zoysia"
)

// grassProfile holds the per-cultivar grain behaviour.
type grassProfile struct {
	// grainFactor scales the with/against-grain friction bias.
	grainFactor float64
	// grainDeflection scales the lateral cross-grain push, in m/s^2 at
	// the reference speed.
	grainDeflection float64
}

var grassProfiles = map[GrassType]grassProfile{
	GrassBent:    {grainFactor: 0.05, grainDeflection: 0.008},
	GrassPoa:     {grainFactor: 0.10, grainDeflection: 0.015},
	GrassBermuda: {grainFactor: 0.15, grainDeflection: 0.025},
	GrassFescue:  {grainFactor: 0.08, grainDeflection: 0.012},
	GrassRye:     {grainFactor: 0.07, grainDeflection: 0.010},
	GrassZoysia:  {grainFactor: 0.12, grainDeflection: 0.020},
}

// GrassTypes lists the supported cultivars.
func GrassTypes() []GrassType {
	return []GrassType{GrassBent, GrassPoa, GrassBermuda, GrassFescue, GrassRye, GrassZoysia}
}

// ParseGrassType validates a configuration string.
func ParseGrassType(s string) (GrassType, error) {
	g := GrassType(s)
	if _, ok := grassProfiles[g]; !ok {
		return "", fmt.Errorf("unknown grass type %q", s)
	}
	return g, nil
}
