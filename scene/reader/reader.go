package reader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/polaris-live/log"
	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/types"
)

// Includes nested deeper than this are treated as a cycle.
const maxIncludeDepth = 16

type sceneReader struct {
	logger log.Logger

	// The parsed scene.
	scene *scene.Scene

	// Set when a camera statement is encountered.
	cameraDefined bool

	// An error stack that provides additional error information when
	// scene files include other files.
	errStack []string
}

// Read a scene description from a local file or an http/https URL. The
// camera aspect ratio is initialized to the supplied value.
func ReadScene(pathToScene string, aspect float32) (*scene.Scene, error) {
	res, err := newResource(pathToScene, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return newSceneReader().read(res, aspect)
}

// Read a scene description from an in-memory stream. Relative include
// statements are resolved against the working directory.
func ReadSceneFrom(name string, source io.Reader, aspect float32) (*scene.Scene, error) {
	return newSceneReader().read(newResourceFromStream(name, source), aspect)
}

func newSceneReader() *sceneReader {
	return &sceneReader{
		logger:   log.New("scene reader"),
		scene:    scene.NewScene(),
		errStack: make([]string, 0),
	}
}

func (r *sceneReader) read(res *resource, aspect float32) (*scene.Scene, error) {
	r.logger.Noticef("parsing scene from %s", res.Path())
	start := time.Now()

	err := r.parse(res)
	if err != nil {
		return nil, err
	}

	if !r.cameraDefined {
		def := scene.Default(aspect)
		r.logger.Infof("no camera defined; using default camera %s", def.Camera)
		r.scene.SetCamera(def.Camera)
	}
	r.scene.Camera.Aspect = aspect

	if err = r.scene.Validate(); err != nil {
		return nil, r.emitError(res.Path(), 0, "%s", err.Error())
	}

	r.logger.Noticef("parsed scene with %d shapes in %d ms", len(r.scene.Shapes), time.Since(start).Nanoseconds()/1000000)
	return r.scene, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *sceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" && line > 0 {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return fmt.Errorf("%s", strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *sceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *sceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Parse a scene description. The following statements are supported:
//
//	camera px py pz fx fy fz ux uy uz fov
//	background r g b
//	sphere cx cy cz radius r g b
//	plane nx ny nz dist r g b
//	include path
//
// Lines starting with '#' are ignored.
func (r *sceneReader) parse(res *resource) error {
	var lineNum int = 0

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "include":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'include'; expected 1 argument; got %d", len(lineTokens)-1)
			}
			if len(r.errStack) >= maxIncludeDepth {
				return r.emitError(res.Path(), lineNum, "include depth exceeds %d; possible include cycle", maxIncludeDepth)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [include]", res.Path(), lineNum))
			incRes, err := newResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "camera":
			cam, err := parseCamera(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.scene.SetCamera(cam)
			r.cameraDefined = true
		case "background":
			bg, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.scene.BgColor = bg
		case "sphere", "plane":
			shape, err := parseShape(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			if err = r.scene.AddShape(shape); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		default:
			return r.emitError(res.Path(), lineNum, "unknown statement '%s'", lineTokens[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	return nil
}

// Parse a camera statement: camera px py pz fx fy fz ux uy uz fov
func parseCamera(lineTokens []string) (*scene.Camera, error) {
	if len(lineTokens) != 11 {
		return nil, fmt.Errorf("unsupported syntax for 'camera'; expected 10 arguments: px py pz fx fy fz ux uy uz fov; got %d", len(lineTokens)-1)
	}

	vals, err := parseFloats(lineTokens[1:])
	if err != nil {
		return nil, err
	}

	fov := vals[9]
	if fov <= 0 || fov >= 180 {
		return nil, fmt.Errorf("camera fov must be in the (0, 180) range; got %f", fov)
	}

	fwd := types.XYZ(vals[3], vals[4], vals[5])
	up := types.XYZ(vals[6], vals[7], vals[8])
	if fwd.Cross(up).Len() < 1e-6 {
		return nil, fmt.Errorf("camera forward and up vectors must not be parallel")
	}

	return scene.NewCamera(types.XYZ(vals[0], vals[1], vals[2]), fwd, up, fov, 1.0), nil
}

// Parse a sphere or plane statement. Both shapes use 7 arguments: a vector
// (center or normal), a scalar (radius or distance) and a color.
func parseShape(lineTokens []string) (scene.Shape, error) {
	if len(lineTokens) != 8 {
		return scene.Shape{}, fmt.Errorf("unsupported syntax for '%s'; expected 7 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	vals, err := parseFloats(lineTokens[1:])
	if err != nil {
		return scene.Shape{}, err
	}

	vec := types.XYZ(vals[0], vals[1], vals[2])
	color := types.XYZ(vals[4], vals[5], vals[6])
	if lineTokens[0] == "sphere" {
		return scene.Sphere(vec, vals[3], color), nil
	}
	return scene.Plane(vec, vals[3], color), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

func parseFloats(tokens []string) ([]float32, error) {
	out := make([]float32, len(tokens))
	for index, tok := range tokens {
		val, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return nil, err
		}
		out[index] = float32(val)
	}
	return out, nil
}
