// Package sinks delivers relayed headlines to downstream systems.
package sinks

import "context"

// Supported sink kinds.
const (
	KindHTTP   = "http"
	KindSQS    = "sqs"
	KindSNS    = "sns"
	KindPubSub = "pubsub"
)

// Sink delivers one event to a downstream system.
type Sink interface {
	Name() string
	Kind() string
	Deliver(ctx context.Context, evt Event) error
}

// Logger is the logging surface sinks rely on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
