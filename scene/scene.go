package scene

import (
	"fmt"

	"github.com/achilleasa/polaris-live/types"
)

// Default camera settings.
const (
	DefaultFOV float32 = 60.0
)

type Scene struct {
	Camera *Camera

	// Shapes are evaluated in order; the order only matters for hits
	// with exactly equal distances.
	Shapes []Shape

	BgColor types.Vec3
}

func NewScene() *Scene {
	return &Scene{
		Shapes: make([]Shape, 0),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a shape to the scene.
func (s *Scene) AddShape(shape Shape) error {
	if err := shape.Validate(); err != nil {
		return err
	}
	s.Shapes = append(s.Shapes, shape)
	return nil
}

// Validate ensures that the scene can be rendered.
func (s *Scene) Validate() error {
	if s.Camera == nil {
		return fmt.Errorf("scene: no camera defined")
	}
	if len(s.Shapes) == 0 {
		return fmt.Errorf("scene: no shapes defined")
	}
	return nil
}

// Intersect the ray against every shape and return the hit with the smallest
// strictly positive distance together with the index of the shape that
// generated it.
func Nearest(shapes []Shape, r Ray) (Hit, int, bool) {
	var (
		nearest Hit
		index   = -1
	)
	for i := range shapes {
		hit, ok := shapes[i].Intersect(r)
		if !ok || hit.T <= 0 {
			continue
		}
		if index == -1 || hit.T < nearest.T {
			nearest = hit
			index = i
		}
	}
	return nearest, index, index != -1
}

// Intersect a ray with the scene shapes.
func (s *Scene) Intersect(r Ray) (Hit, int, bool) {
	return Nearest(s.Shapes, r)
}

// Create the default scene: two spheres resting above a ground plane.
func Default(aspect float32) *Scene {
	sc := NewScene()
	sc.SetCamera(NewCamera(
		types.XYZ(0, 0.5, 0),
		types.XYZ(0, 0, 1),
		types.XYZ(0, 1, 0),
		DefaultFOV,
		aspect,
	))
	sc.Shapes = append(sc.Shapes,
		Sphere(types.XYZ(0, 5, 15), 4, types.XYZ(0, 1, 0)),
		Plane(types.XYZ(0, 1, 0), 0, types.XYZ(0, 0, 1)),
		Sphere(types.XYZ(0, 0, 50), 30, types.XYZ(1, 0, 0)),
	)
	return sc
}
