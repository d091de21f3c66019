package tracer

import "fmt"

// ShadeMode selects how hit points are converted to pixel colors.
type ShadeMode uint32

const (
	// Map the surface normal to a color: c = (n + 1) / 2.
	ShadeNormals ShadeMode = iota

	// Shape base color scaled by the cosine between the normal and the
	// view ray.
	ShadeColor
)

func (m ShadeMode) String() string {
	switch m {
	case ShadeNormals:
		return "normals"
	case ShadeColor:
		return "color"
	}
	return fmt.Sprintf("ShadeMode(%d)", uint32(m))
}

// Parse a shade mode name.
func ParseShadeMode(name string) (ShadeMode, error) {
	switch name {
	case "normals":
		return ShadeNormals, nil
	case "color":
		return ShadeColor, nil
	}
	return 0, fmt.Errorf("tracer: unsupported shade mode '%s'; expected 'normals' or 'color'", name)
}

// Render kernel options.
type Options struct {
	// Session seed for the per-pixel random streams.
	Seed uint32

	Shade ShadeMode

	// Jitter primary rays inside each pixel so that accumulated frames
	// converge to an anti-aliased image.
	Jitter bool
}
