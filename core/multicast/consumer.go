// Package multicast implements the receiver half of the pipeline: a UDP
// multicast socket driven by a small I/O reactor, a fixed buffer pool and
// inbound queue (core/buffers), and the consumer contract through which
// decoded payloads and lifecycle/error events are handed upward.
package multicast

// LogLevel is a five-step importance ladder, most important first, used
// purely to gate log production through a consumer's WantLog check.
type LogLevel int

const (
	LogFatal LogLevel = iota
	LogError
	LogWarning
	LogInfo
	LogVerbose
)

// String renders a LogLevel the way a log line would name it.
func (l LogLevel) String() string {
	switch l {
	case LogFatal:
		return "fatal"
	case LogError:
		return "error"
	case LogWarning:
		return "warning"
	case LogInfo:
		return "info"
	case LogVerbose:
		return "verbose"
	default:
		return "unknown"
	}
}

// BufferConsumer is the capability set through which a Receiver hands
// received payloads upward and reports lifecycle and error events. All
// failure signaling happens through return values: a consumer asking for
// shutdown returns false, never panics or blocks indefinitely.
type BufferConsumer interface {
	// ReceiverStarted is advisory; called once after socket setup
	// completes and before the first receive is posted.
	ReceiverStarted()

	// ConsumeBuffer processes one UDP payload. Returning false requests
	// that the receiver stop. ConsumeBuffer is never called concurrently
	// with itself by the same receiver.
	ConsumeBuffer(data []byte) bool

	// ReportCommunicationError is called when the reactor reports a
	// socket-level failure. Returning false requests shutdown.
	ReportCommunicationError(message string) bool

	// ReportDecodingError is called when ConsumeBuffer signals a decode
	// failure by means other than its own boolean return (see
	// DecodingErrorConsumer below). Returning false requests shutdown.
	ReportDecodingError(message string) bool

	// WantLog gates log production: a consumer that does not want to see
	// messages at level should return false, sparing the receiver the
	// cost of formatting one.
	WantLog(level LogLevel) bool

	// LogMessage delivers one already-formatted advisory log line.
	LogMessage(level LogLevel, text string)
}

// DecodingErrorConsumer is an optional extension a BufferConsumer may
// implement when ConsumeBuffer would rather signal a decoding failure
// with a message than by simply returning false. A receiver checks for
// this interface once per consumer, not per call.
type DecodingErrorConsumer interface {
	// ConsumeBufferChecked behaves like ConsumeBuffer, but returns an
	// error instead of a bare false when decoding fails, letting the
	// receiver route the failure through ReportDecodingError with a
	// message rather than silently dropping the payload.
	ConsumeBufferChecked(data []byte) error
}

// NopConsumer is a BufferConsumer that accepts every buffer, logs
// nothing, and never requests shutdown. Useful as an embeddable base or
// for tests that only care about a receiver's own bookkeeping.
type NopConsumer struct{}

func (NopConsumer) ReceiverStarted()                             {}
func (NopConsumer) ConsumeBuffer(data []byte) bool               { return true }
func (NopConsumer) ReportCommunicationError(message string) bool { return true }
func (NopConsumer) ReportDecodingError(message string) bool      { return true }
func (NopConsumer) WantLog(level LogLevel) bool                  { return false }
func (NopConsumer) LogMessage(level LogLevel, text string)       {}
