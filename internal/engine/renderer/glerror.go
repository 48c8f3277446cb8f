package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

func glErrorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	}
	return "GL_UNKNOWN"
}

// drainErrors empties the GL error queue, logging each entry with the
// pipeline stage it was observed after. GL errors are sticky, so without
// draining, an old error would be blamed on the next caller of
// glGetError.
func drainErrors(log *zap.Logger, scope string) {
	for {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			return
		}
		log.Warn("OpenGL error",
			zap.String("scope", scope),
			zap.String("error", glErrorName(code)),
			zap.Uint32("code", code),
		)
	}
}
