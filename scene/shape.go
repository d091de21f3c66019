package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/polaris-live/types"
)

// Rays whose direction is closer than this to being parallel with a plane miss it.
const parallelEpsilon = 1e-6

// The supported shape types.
type ShapeType uint32

const (
	SphereShape ShapeType = iota
	PlaneShape
)

func (st ShapeType) String() string {
	switch st {
	case SphereShape:
		return "sphere"
	case PlaneShape:
		return "plane"
	}
	return fmt.Sprintf("shape(%d)", uint32(st))
}

// A ray with an origin and a direction.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

// At returns the point along the ray at distance t.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Intersection data for a ray hit.
type Hit struct {
	T        float32
	Position types.Vec3
	Normal   types.Vec3
}

// Shape is a tagged variant over the supported primitives. Only the fields
// relevant to Type are used.
type Shape struct {
	Type  ShapeType
	Color types.Vec3

	// Sphere
	Center types.Vec3
	Radius float32

	// Plane: all points p with dot(Normal, p) == Dist.
	Normal types.Vec3
	Dist   float32
}

// Create a sphere.
func Sphere(center types.Vec3, radius float32, color types.Vec3) Shape {
	return Shape{Type: SphereShape, Center: center, Radius: radius, Color: color}
}

// Create a plane. The normal is normalized.
func Plane(normal types.Vec3, dist float32, color types.Vec3) Shape {
	return Shape{Type: PlaneShape, Normal: normal.Normalize(), Dist: dist, Color: color}
}

func (s Shape) String() string {
	switch s.Type {
	case SphereShape:
		return fmt.Sprintf("sphere(center: %v, radius: %3.3f)", s.Center, s.Radius)
	case PlaneShape:
		return fmt.Sprintf("plane(normal: %v, dist: %3.3f)", s.Normal, s.Dist)
	}
	return s.Type.String()
}

// Validate shape parameters.
func (s Shape) Validate() error {
	switch s.Type {
	case SphereShape:
		if s.Radius <= 0 {
			return fmt.Errorf("scene: sphere radius must be positive; got %f", s.Radius)
		}
	case PlaneShape:
		if s.Normal.Len() < 0.5 {
			return fmt.Errorf("scene: plane normal must be a unit vector; got %v", s.Normal)
		}
	default:
		return fmt.Errorf("scene: unsupported shape type %d", uint32(s.Type))
	}
	return nil
}

// Intersect the shape with a ray. A false return value means that the ray
// misses the shape, hits it behind its origin or is numerically degenerate
// with respect to it.
func (s *Shape) Intersect(r Ray) (Hit, bool) {
	switch s.Type {
	case SphereShape:
		return s.intersectSphere(r)
	case PlaneShape:
		return s.intersectPlane(r)
	}
	return Hit{}, false
}

func (s *Shape) intersectSphere(r Ray) (Hit, bool) {
	oc := r.Origin.Sub(s.Center)
	a := r.Dir.Dot(r.Dir)
	if a == 0 {
		return Hit{}, false
	}
	b := 2 * oc.Dot(r.Dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}, false
	}

	sqrtDisc := float32(math.Sqrt(float64(disc)))
	t := (-b - sqrtDisc) / (2 * a)
	if t < 0 {
		// Origin inside the sphere; use the far root.
		t = (-b + sqrtDisc) / (2 * a)
		if t < 0 {
			return Hit{}, false
		}
	}

	pos := r.At(t)
	return Hit{
		T:        t,
		Position: pos,
		Normal:   pos.Sub(s.Center).Mul(1.0 / s.Radius),
	}, true
}

func (s *Shape) intersectPlane(r Ray) (Hit, bool) {
	denom := s.Normal.Dot(r.Dir)
	if float32(math.Abs(float64(denom))) < parallelEpsilon {
		return Hit{}, false
	}

	t := (s.Dist - s.Normal.Dot(r.Origin)) / denom
	if t < 0 {
		return Hit{}, false
	}

	return Hit{
		T:        t,
		Position: r.At(t),
		Normal:   s.Normal,
	}, true
}
