package debug

import (
	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
	"github.com/Faultbox/microwave-sim/internal/logger"
)

var glErrorNames = map[uint32]string{
	0x0500: "GL_INVALID_ENUM",
	0x0501: "GL_INVALID_VALUE",
	0x0502: "GL_INVALID_OPERATION",
	0x0505: "GL_OUT_OF_MEMORY",
	0x0506: "GL_INVALID_FRAMEBUFFER_OPERATION",
}

// ErrorName returns the GL enum name for code.
func ErrorName(code uint32) string {
	if name, ok := glErrorNames[code]; ok {
		return name
	}
	return "GL_UNKNOWN_ERROR"
}

// DrainErrors logs every pending GL error and returns how many there were.
func DrainErrors(dev gpu.Device, frame uint64) int {
	codes := dev.Errors()
	for _, code := range codes {
		logger.Warn("gl error",
			zap.Uint64("frame", frame),
			zap.Uint32("code", code),
			zap.String("name", ErrorName(code)),
		)
	}
	return len(codes)
}
