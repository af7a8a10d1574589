package stream

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sinkBufferSize = 10
)

// Message is a value broadcast by a source.
type Message interface {
	String() string
}

// Source represents a message source that will be broadcast to its sinks.
type Source struct {
	logger *zap.Logger

	sinks     map[string]*Sink
	sinksLock sync.Mutex
}

// NewSource creates a new message source.
func NewSource(logger *zap.Logger) *Source {
	return &Source{
		logger: logger,
		sinks:  map[string]*Sink{},
	}
}

// NewSink creates a message sink for this source.
func (s *Source) NewSink() *Sink {
	sink := &Sink{
		id:      uuid.New().String(),
		channel: make(chan Message, sinkBufferSize),
		source:  s,
	}

	s.sinksLock.Lock()
	s.sinks[sink.id] = sink
	s.sinksLock.Unlock()

	s.logger.Debug("added sink",
		zap.String("channel_id", sink.id))
	return sink
}

// SinkCount returns the number of open sinks.
func (s *Source) SinkCount() int {
	s.sinksLock.Lock()
	defer s.sinksLock.Unlock()

	return len(s.sinks)
}

// SendMessage sends a message to all created sinks.
// A sink whose buffer is full misses the message rather than blocking the sender.
func (s *Source) SendMessage(msg Message) {
	s.sinksLock.Lock()
	defer s.sinksLock.Unlock()

	for _, sink := range s.sinks {
		select {
		case sink.channel <- msg:
		default:
			s.logger.Debug("channel blocked",
				zap.String("channel_id", sink.id),
				zap.String("message", msg.String()),
			)
		}
	}
}

// removeSink must be called with the lock held so no send races the channel close.
func (s *Source) removeSink(sink *Sink) bool {
	if _, ok := s.sinks[sink.id]; !ok {
		return false
	}
	delete(s.sinks, sink.id)
	return true
}
