package tracer

import "fmt"

// A Surface is the writable view of a graphics resource obtained by mapping
// it. Pixels holds Width*Height RGBA float32 tuples in row-major order with
// row 0 at the top of the image.
type Surface struct {
	Width  uint32
	Height uint32
	Pixels []float32
}

// A GraphicsResource is a surface shared between the display pipeline and the
// compute domain. It can be mapped at most once at any time.
type GraphicsResource interface {
	Map() (Surface, error)
	Unmap() error
}

// A Mapping is a scoped acquisition of a graphics resource.
//
//	m, err := tracer.Map(res)
//	if err != nil {
//		return err
//	}
//	defer m.Release()
type Mapping struct {
	res      GraphicsResource
	surface  Surface
	released bool
}

// Map the resource and return a Mapping that must be released by the caller.
func Map(res GraphicsResource) (*Mapping, error) {
	surface, err := res.Map()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceMapping, err)
	}

	return &Mapping{
		res:     res,
		surface: surface,
	}, nil
}

// Get the mapped surface.
func (m *Mapping) Surface() Surface {
	return m.surface
}

// Unmap the resource. Only the first call reaches the resource; subsequent
// calls are no-ops.
func (m *Mapping) Release() error {
	if m.released {
		return nil
	}
	m.released = true
	m.surface = Surface{}

	if err := m.res.Unmap(); err != nil {
		return fmt.Errorf("%w: %w", ErrResourceMapping, err)
	}
	return nil
}

// HostResource is a GraphicsResource backed by host memory. It serves as the
// raw frame surface when rendering without a display.
type HostResource struct {
	width  uint32
	height uint32
	pixels []float32
	mapped bool
}

// Create a host resource with the given dimensions.
func NewHostResource(width, height uint32) *HostResource {
	r := &HostResource{}
	r.Resize(width, height)
	return r
}

// Reallocate the surface. The previous contents are discarded.
func (r *HostResource) Resize(width, height uint32) error {
	if r.mapped {
		return ErrAlreadyMapped
	}
	r.width, r.height = width, height
	r.pixels = make([]float32, int(width)*int(height)*FrameComponents)
	return nil
}

func (r *HostResource) Map() (Surface, error) {
	if r.mapped {
		return Surface{}, ErrAlreadyMapped
	}
	r.mapped = true
	return Surface{Width: r.width, Height: r.height, Pixels: r.pixels}, nil
}

func (r *HostResource) Unmap() error {
	if !r.mapped {
		return ErrNotMapped
	}
	r.mapped = false
	return nil
}

// Get surface dimensions.
func (r *HostResource) Size() (uint32, uint32) {
	return r.width, r.height
}

// Get the surface contents.
func (r *HostResource) Pixels() []float32 {
	return r.pixels
}
