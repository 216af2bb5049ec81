package mython

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mython.interp'. Hosts select a backend through
// schuko's configuration; the default is silent.
func tracer() tracing.Trace {
	return tracing.Select("mython.interp")
}
