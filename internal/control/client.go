package control

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/simula/nperfd/internal/paths"
)

// Deadline applied to a whole client exchange.
const clientTimeout = 5 * time.Second

// Sends a single command to a running launcher and returns the response
// envelope.
//
// An empty socketPath uses the default socket location. The error result of
// a failed command is unwrapped into an error.
func Request(socketPath string, cmd Command) (*Envelope, error) {
	if socketPath == "" {
		socketPath = paths.Socket()
	}

	conn, err := net.DialTimeout("unix", socketPath, clientTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: is the launcher running? %w", ErrClient, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(clientTimeout))

	data, err := Encode(cmd, nil)
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClient, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClient, err)
	}

	env, err := Decode(line)
	if err != nil {
		return nil, err
	}

	if env.Command == CmdError {
		res, err := DecodePayload[ErrorResult](env.Payload)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrClient, res.Message)
	}

	return &env, nil
}

// Queries the state of a running launcher.
func Status(socketPath string) (*StatusResult, error) {
	env, err := Request(socketPath, CmdStatus)
	if err != nil {
		return nil, err
	}
	return DecodePayload[StatusResult](env.Payload)
}

// Asks a running launcher to shut down gracefully.
func Stop(socketPath string) error {
	_, err := Request(socketPath, CmdStop)
	return err
}
