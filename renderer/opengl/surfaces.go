package opengl

import (
	"fmt"

	"github.com/achilleasa/polaris-live/accumulator"
	"github.com/achilleasa/polaris-live/log"
	"github.com/achilleasa/polaris-live/tracer"
	"github.com/go-gl/gl/v4.1-core/gl"
)

const (
	rawFrameUnit  = 0
	lastFrameUnit = 1
)

var _ accumulator.Surfaces = (*Surfaces)(nil)

// Surfaces implements accumulator.Surfaces with three RGBA32F textures: the
// raw frame written by the kernel, the accumulated history and a snapshot
// of the history taken before each blend.
type Surfaces struct {
	logger log.Logger

	display *Window

	rawTex      uint32
	historyTex  uint32
	snapshotTex uint32
	historyFbo  uint32
	snapshotFbo uint32

	raw *PixelBuffer

	accumulateProgram uint32
	blitProgram       uint32
	vao               uint32

	frameW uint32
	frameH uint32
}

// Create the surfaces and compile the blending shaders. The window's GL
// context must be current. Callers must invoke Resize before using them.
func NewSurfaces(display *Window) (*Surfaces, error) {
	var err error
	s := &Surfaces{
		logger:  log.New("opengl surfaces"),
		display: display,
	}

	s.accumulateProgram, err = linkProgram(fullscreenVertexShader, accumulateFragmentShader)
	if err != nil {
		return nil, err
	}
	s.blitProgram, err = linkProgram(fullscreenVertexShader, blitFragmentShader)
	if err != nil {
		gl.DeleteProgram(s.accumulateProgram)
		return nil, err
	}

	gl.UseProgram(s.accumulateProgram)
	setUniformInt(s.accumulateProgram, "currentFrameTex", rawFrameUnit)
	setUniformInt(s.accumulateProgram, "lastFrameTex", lastFrameUnit)
	gl.UseProgram(s.blitProgram)
	setUniformInt(s.blitProgram, "frameTex", 0)
	gl.UseProgram(0)

	// Vertices are generated in the vertex shader.
	gl.GenVertexArrays(1, &s.vao)
	gl.GenTextures(1, &s.rawTex)
	gl.GenTextures(1, &s.historyTex)
	gl.GenTextures(1, &s.snapshotTex)
	gl.GenFramebuffers(1, &s.historyFbo)
	gl.GenFramebuffers(1, &s.snapshotFbo)
	s.raw = newPixelBuffer(s.rawTex)

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	if err = checkError("surface setup"); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// Get the graphics resource that the render kernel writes raw frames to.
func (s *Surfaces) Raw() tracer.GraphicsResource {
	return s.raw
}

// Reallocate all surfaces. Previous contents are discarded and the history
// is cleared.
func (s *Surfaces) Resize(frameW, frameH uint32) error {
	if err := s.raw.resize(frameW, frameH); err != nil {
		return err
	}

	for _, tex := range []uint32{s.rawTex, s.historyTex, s.snapshotTex} {
		allocTexture(tex, frameW, frameH)
	}
	if err := attachTexture(s.historyFbo, s.historyTex); err != nil {
		return err
	}
	if err := attachTexture(s.snapshotFbo, s.snapshotTex); err != nil {
		return err
	}

	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, s.historyFbo)
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)

	s.frameW, s.frameH = frameW, frameH
	s.logger.Debugf("allocated %dx%d surfaces", frameW, frameH)
	return checkError("surface resize")
}

func allocTexture(tex, frameW, frameH uint32) {
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(frameW), int32(frameH), 0, gl.RGBA, gl.FLOAT, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func attachTexture(fbo, tex uint32) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("opengl: incomplete framebuffer (status 0x%x)", status)
	}
	return nil
}

// Copy the history into the snapshot surface.
func (s *Surfaces) Snapshot() error {
	w, h := int32(s.frameW), int32(s.frameH)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, s.historyFbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, s.snapshotFbo)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	return checkError("history snapshot")
}

// Blend the raw frame with the snapshot into the history surface.
func (s *Surfaces) Blend(frameCount uint32) error {
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, s.historyFbo)
	gl.Viewport(0, 0, int32(s.frameW), int32(s.frameH))

	gl.UseProgram(s.accumulateProgram)
	setUniformInt(s.accumulateProgram, "frameCount", int32(frameCount))
	gl.ActiveTexture(gl.TEXTURE0 + rawFrameUnit)
	gl.BindTexture(gl.TEXTURE_2D, s.rawTex)
	gl.ActiveTexture(gl.TEXTURE0 + lastFrameUnit)
	gl.BindTexture(gl.TEXTURE_2D, s.snapshotTex)

	s.drawFullscreen()

	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	return checkError("frame blend")
}

// Draw the history surface to the default framebuffer.
func (s *Surfaces) Present() error {
	fbW, fbH := s.display.FramebufferSize()
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbW), int32(fbH))

	gl.UseProgram(s.blitProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.historyTex)

	s.drawFullscreen()
	return checkError("frame present")
}

func (s *Surfaces) drawFullscreen() {
	gl.BindVertexArray(s.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

func (s *Surfaces) Release() {
	if s.raw != nil {
		s.raw.release()
		s.raw = nil
	}
	gl.DeleteFramebuffers(1, &s.historyFbo)
	gl.DeleteFramebuffers(1, &s.snapshotFbo)
	for _, tex := range []*uint32{&s.rawTex, &s.historyTex, &s.snapshotTex} {
		gl.DeleteTextures(1, tex)
	}
	gl.DeleteVertexArrays(1, &s.vao)
	gl.DeleteProgram(s.accumulateProgram)
	gl.DeleteProgram(s.blitProgram)
}
