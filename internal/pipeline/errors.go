package pipeline

import (
	"github.com/rohmanhakim/css-svg/pkg/failure"
)

// PluginName identifies the transform in errors raised to the host pipeline.
const PluginName = "css-svg"

const messageStreamNotSupported = "Stream not supported!"

// PluginError is raised for inputs the transform refuses to handle.
// Error returns Message alone so hosts can match it verbatim.
type PluginError struct {
	Plugin  string
	Message string
}

func (e *PluginError) Error() string {
	return e.Message
}

func (e *PluginError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func newStreamNotSupported() *PluginError {
	return &PluginError{
		Plugin:  PluginName,
		Message: messageStreamNotSupported,
	}
}
