// Package glshader compiles GLSL files with the current OpenGL context.
package glshader

import (
	"fmt"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
	"github.com/Faultbox/microwave-sim/internal/engine/shader"
	"github.com/Faultbox/microwave-sim/internal/logger"
)

// Compiler implements shader.Compiler. The GL context must be current.
type Compiler struct{}

var _ shader.Compiler = Compiler{}

// Compile reads, compiles and links the two stages.
func (Compiler) Compile(vertexPath, fragmentPath string) (gpu.Handle, error) {
	vert, err := compileFile(vertexPath, gl.VERTEX_SHADER, shader.StageVertex)
	if err != nil {
		return gpu.Unbound, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compileFile(fragmentPath, gl.FRAGMENT_SHADER, shader.StageFragment)
	if err != nil {
		return gpu.Unbound, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) { gl.GetProgramInfoLog(program, logLen, nil, buf) })
		gl.DeleteProgram(program)
		return gpu.Unbound, &shader.CompileError{Stage: shader.StageLink, Log: log}
	}

	gl.DetachShader(program, vert)
	gl.DetachShader(program, frag)
	return gpu.Handle(program), nil
}

func compileFile(path string, shaderType uint32, stage shader.Stage) (uint32, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, &shader.CompileError{Stage: stage, Path: path, Log: err.Error()}
	}

	logger.Info("compiling shader", zap.String("stage", string(stage)), zap.String("path", path))

	id := gl.CreateShader(shaderType)
	csource, free := gl.Strs(string(src) + "\x00")
	gl.ShaderSource(id, 1, csource, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) { gl.GetShaderInfoLog(id, logLen, nil, buf) })
		gl.DeleteShader(id)
		return 0, &shader.CompileError{Stage: stage, Path: path, Log: log}
	}
	return id, nil
}

func infoLog(length int32, read func(*uint8)) string {
	if length <= 0 {
		return fmt.Sprintf("no info log (length %d)", length)
	}
	buf := make([]byte, length)
	read(&buf[0])
	// Drop the trailing NUL.
	for len(buf) > 0 && buf[len(buf)-1] == 0 {
		buf = buf[:len(buf)-1]
	}
	return string(buf)
}
