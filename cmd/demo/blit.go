package main

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// blitter draws the renderer's ARGB frame buffer as a single fullscreen
// textured quad. Grounded on the teacher's shader compilation pattern
// (internal/graphics/shader.go's compileProgram/compileShader) and texture
// upload pattern (internal/graphics/texture_util.go's LoadTexture), with
// the shader source inlined rather than read from disk since this is a
// single self-contained demo binary rather than a general asset pipeline.
type blitter struct {
	program uint32
	vao     uint32
	texture uint32
	width   int
	height  int
}

const blitVertexShader = `#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
out vec2 vUV;
void main() {
	vUV = aUV;
	gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

const blitFragmentShader = `#version 410 core
in vec2 vUV;
out vec4 fragColor;
uniform sampler2D uFrame;
void main() {
	fragColor = texture(uFrame, vUV);
}
` + "\x00"

func newBlitter(width, height int) (*blitter, error) {
	program, err := compileBlitProgram()
	if err != nil {
		return nil, err
	}

	quad := []float32{
		-1, -1, 0, 1,
		1, -1, 1, 1,
		1, 1, 1, 0,
		-1, -1, 0, 1,
		1, 1, 1, 0,
		-1, 1, 0, 0,
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &blitter{program: program, vao: vao, texture: tex, width: width, height: height}, nil
}

// Upload re-uploads buf (width*height ARGB words, row-major) as the quad's
// texture. buf's byte order is swizzled BGRA->RGBA here since the renderer
// packs 0xAARRGGBB into a native-endian uint32 but OpenGL's default
// unpack expects RGBA byte order.
func (b *blitter) Upload(buf []uint32) {
	gl.BindTexture(gl.TEXTURE_2D, b.texture)
	gl.TexImage2D(
		gl.TEXTURE_2D, 0, gl.RGBA,
		int32(b.width), int32(b.height), 0,
		gl.BGRA, gl.UNSIGNED_INT_8_8_8_8_REV,
		gl.Ptr(buf),
	)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (b *blitter) Draw() {
	gl.Disable(gl.DEPTH_TEST)
	gl.UseProgram(b.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.texture)
	gl.Uniform1i(gl.GetUniformLocation(b.program, gl.Str("uFrame\x00")), 0)
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func compileBlitProgram() (uint32, error) {
	vertexShader, err := compileShader(blitVertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(blitFragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to link blit program: %v", log)
	}
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}
