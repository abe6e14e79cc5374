package goSaaS

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSaaS/internal/audit"
)

// AuditEvent is one security event delivered to an AuditSink.
type AuditEvent = audit.Event

// AuditSink receives audit events from the engine's dispatcher goroutine.
type AuditSink = audit.Sink

// NoOpSink discards events.
type NoOpSink = audit.NoOpSink

// NewChannelSink returns a sink that buffers events on a channel.
func NewChannelSink(buffer int) *audit.ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing JSON lines to w.
func NewJSONWriterSink(w io.Writer) *audit.JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewZerologSink returns a sink that logs events through logger.
func NewZerologSink(logger zerolog.Logger) *audit.ZerologSink {
	return audit.NewZerologSink(logger)
}
