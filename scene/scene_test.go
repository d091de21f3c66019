package scene

import (
	"testing"

	"github.com/achilleasa/polaris-live/types"
)

func TestNearestPicksSmallestDistance(t *testing.T) {
	far := Sphere(types.XYZ(0, 0, 50), 30, types.XYZ(1, 0, 0))
	near := Sphere(types.XYZ(0, 0, 15), 4, types.XYZ(0, 1, 0))
	ray := Ray{types.XYZ(0, 0, 0), types.XYZ(0, 0, 1)}

	for index, shapes := range [][]Shape{{far, near}, {near, far}} {
		hit, shapeIndex, ok := Nearest(shapes, ray)
		if !ok {
			t.Fatalf("[spec %d] expected a hit", index)
		}
		if shapes[shapeIndex].Radius != near.Radius {
			t.Fatalf("[spec %d] expected the nearer sphere to win; got %v", index, shapes[shapeIndex])
		}
		if hit.T != 11 {
			t.Fatalf("[spec %d] expected t to be 11; got %f", index, hit.T)
		}
	}
}

func TestNearestWithEqualDistances(t *testing.T) {
	a := Sphere(types.XYZ(0, 0, 10), 2, types.XYZ(1, 0, 0))
	b := Sphere(types.XYZ(0, 0, 10), 2, types.XYZ(0, 1, 0))

	hit, shapeIndex, ok := Nearest([]Shape{a, b}, Ray{types.XYZ(0, 0, 0), types.XYZ(0, 0, 1)})
	if !ok {
		t.Fatal("expected a hit")
	}
	// Either shape may win a tie.
	if shapeIndex != 0 && shapeIndex != 1 {
		t.Fatalf("expected winning index to be 0 or 1; got %d", shapeIndex)
	}
	if hit.T != 8 {
		t.Fatalf("expected t to be 8; got %f", hit.T)
	}
}

func TestNearestIgnoresZeroDistanceHits(t *testing.T) {
	plane := Plane(types.XYZ(0, 1, 0), 0, types.XYZ(0, 0, 1))
	if _, _, ok := Nearest([]Shape{plane}, Ray{types.XYZ(0, 0, 0), types.XYZ(0, -1, 0)}); ok {
		t.Fatal("expected a hit at t == 0 to be ignored")
	}
}

func TestDefaultScene(t *testing.T) {
	sc := Default(1.0)
	if err := sc.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(sc.Shapes) != 3 {
		t.Fatalf("expected default scene to contain 3 shapes; got %d", len(sc.Shapes))
	}

	// Looking straight ahead from the camera should hit the large sphere.
	_, shapeIndex, ok := sc.Intersect(Ray{sc.Camera.Position, sc.Camera.Forward})
	if !ok || sc.Shapes[shapeIndex].Radius != 30 {
		t.Fatalf("expected the center ray to hit the large sphere; got index %d (hit: %t)", shapeIndex, ok)
	}
}

func TestAddShapeValidates(t *testing.T) {
	sc := NewScene()
	if err := sc.AddShape(Sphere(types.XYZ(0, 0, 0), -1, types.Vec3{})); err == nil {
		t.Fatal("expected an error when adding an invalid sphere")
	}
	if err := sc.Validate(); err == nil {
		t.Fatal("expected an empty scene without camera to fail validation")
	}
}
