package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Generates a fullscreen triangle strip from gl_VertexID; draw 4 vertices
// with an empty vertex array bound.
const fullscreenVertexShader = `
#version 410 core

out vec2 uv;

void main() {
	vec2 pos = vec2(float((gl_VertexID & 1) << 1) - 1.0, float(gl_VertexID & 2) - 1.0);
	uv = pos * 0.5 + 0.5;
	gl_Position = vec4(pos, 0.0, 1.0);
}
`

// Blends the raw frame into the accumulated history. The history is read
// from a snapshot so the target can be written in place.
const accumulateFragmentShader = `
#version 410 core

uniform sampler2D currentFrameTex;
uniform sampler2D lastFrameTex;
uniform int frameCount;

out vec4 outColor;

void main() {
	ivec2 texel = ivec2(gl_FragCoord.xy);
	vec4 current = texelFetch(currentFrameTex, texel, 0);
	if (frameCount <= 1) {
		outColor = current;
		return;
	}

	float fc = float(frameCount);
	vec4 last = texelFetch(lastFrameTex, texel, 0);
	outColor = current / fc + last * ((fc - 1.0) / fc);
}
`

// Row 0 of a frame is the top of the image so v is flipped.
const blitFragmentShader = `
#version 410 core

in vec2 uv;
uniform sampler2D frameTex;

out vec4 outColor;

void main() {
	outColor = clamp(texture(frameTex, vec2(uv.x, 1.0 - uv.y)), 0.0, 1.0);
}
`

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("opengl: shader compilation failed: %s", strings.TrimRight(infoLog, "\x00"))
	}

	return shader, nil
}

// Compile and link a program from a vertex and a fragment shader source.
func linkProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("opengl: program linking failed: %s", strings.TrimRight(infoLog, "\x00"))
	}

	return program, nil
}

func setUniformInt(program uint32, name string, value int32) {
	gl.Uniform1i(gl.GetUniformLocation(program, gl.Str(name+"\x00")), value)
}

// Report the first pending GL error, if any.
func checkError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("opengl: %s failed with error 0x%x", op, code)
	}
	return nil
}
