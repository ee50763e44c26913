package metadata

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
)

const (

	// Default endpoint of the node's metadata broker. The broker runs in a
	// sibling container and publishes on the Docker bridge address.
	DefaultEndpoint = "tcp://172.17.0.1:5556"

	// Topic prefix carrying modem metadata.
	TopicPrefix = "MONROE.META.DEVICE.MODEM"

	// Suffix of topics that carry modem state updates. Other suffixes on the
	// modem topic (connectivity events and the like) are not interesting here.
	updateSuffix = ".UPDATE"
)

// Subscription to the node's modem metadata stream.
type Stream struct {
	sock zmq4.Socket // ZeroMQ SUB socket connected to the broker.
}

// Connects to the metadata broker and subscribes to modem topics.
//
// The returned stream must be closed when no longer needed. The context
// bounds the lifetime of the underlying socket.
func Dial(ctx context.Context, endpoint string) (*Stream, error) {
	sock := zmq4.NewSub(ctx)

	if err := sock.Dial(endpoint); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStream, endpoint, err)
	}

	if err := sock.SetOption(zmq4.OptionSubscribe, TopicPrefix); err != nil {
		sock.Close()
		return nil, fmt.Errorf("%w: %w", ErrStream, err)
	}

	return &Stream{sock: sock}, nil
}

// Closes the underlying socket.
func (s *Stream) Close() error {
	return s.sock.Close()
}

// Receives the next message from the stream.
//
// Messages are published as a single frame of the form "<topic> <json>".
// Returns the topic and the raw JSON payload.
func (s *Stream) Recv() (topic string, payload []byte, err error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrStream, err)
	}

	raw := msg.Bytes()
	t, p, ok := bytes.Cut(raw, []byte(" "))
	if !ok {
		return "", nil, fmt.Errorf("%w: no payload separator", ErrMalformed)
	}

	return string(t), p, nil
}

// Reports whether the topic carries a modem state update.
func IsModemUpdate(topic string) bool {
	return len(topic) >= len(TopicPrefix)+len(updateSuffix) &&
		topic[:len(TopicPrefix)] == TopicPrefix &&
		topic[len(topic)-len(updateSuffix):] == updateSuffix
}
