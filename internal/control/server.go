package control

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/simula/nperfd/internal/paths"
)

// File mode applied to the control socket. The launcher runs as the only
// user inside the experiment container, so owner access is enough.
const socketMode = 0600

// Serves launcher state over a Unix domain socket.
//
// Each connection carries a single request-response exchange: the client
// sends one newline-delimited JSON envelope, the server dispatches the
// command and writes the result back before closing the connection.
type Server struct {
	socketPath string               // Path to the Unix socket file.
	status     func() *StatusResult // Supplies the current launcher state.
	stop       func()               // Initiates a graceful shutdown.
	listener   net.Listener         // Listener for incoming connections.
	done       chan struct{}        // Closed when the server shuts down.
}

// Creates a control server.
//
// The status callback supplies the launcher state for status commands; the
// stop callback is invoked when a stop command arrives. The socket is not
// opened until [Server.Start] is called.
func New(socketPath string, status func() *StatusResult, stop func()) *Server {
	if socketPath == "" {
		socketPath = paths.Socket()
	}
	return &Server{
		socketPath: socketPath,
		status:     status,
		stop:       stop,
		done:       make(chan struct{}),
	}
}

// Opens the Unix socket and begins accepting connections.
//
// Any stale socket file from a previous run is removed first.
func (s *Server) Start() error {
	if err := os.MkdirAll(paths.Runtime(), paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrServer, err)
	}

	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("%w: failed to listen on %s: %w", ErrServer, s.socketPath, err)
	}

	if err := os.Chmod(s.socketPath, socketMode); err != nil {
		listener.Close()
		return fmt.Errorf("%w: failed to chmod socket %s: %w", ErrServer, s.socketPath, err)
	}

	s.listener = listener

	if err := s.writePID(); err != nil {
		slog.Warn("failed to write PID file", "error", err)
	}

	slog.Info("control socket listening", "path", s.socketPath)

	go s.accept()
	return nil
}

// Shuts down the server and removes the socket and PID files.
func (s *Server) Stop() error {
	close(s.done)

	if s.listener != nil {
		s.listener.Close()
	}

	os.Remove(s.socketPath)
	os.Remove(paths.PIDFile())

	return nil
}

// Accepts connections in a loop until the server shuts down.
func (s *Server) accept() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				slog.Error("accept error", "error", err)
				continue
			}
		}

		go s.handle(conn)
	}
}

// Processes a single connection.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		slog.Error("read error", "error", err)
		return
	}

	env, err := Decode(line)
	if err != nil {
		s.respond(conn, CmdError, &ErrorResult{Message: err.Error()})
		return
	}

	slog.Debug("control command received", "command", env.Command)

	switch env.Command {
	case CmdStatus:
		s.respond(conn, CmdOK, s.status())
	case CmdStop:
		s.respond(conn, CmdOK, nil)
		go s.stop()
	default:
		s.respond(conn, CmdError, &ErrorResult{
			Message: fmt.Sprintf("unknown command: %s", env.Command),
		})
	}
}

// Writes a JSON envelope response to the connection.
func (s *Server) respond(conn net.Conn, cmd Command, payload any) {
	data, err := Encode(cmd, payload)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}

// Writes the launcher PID to the PID file so host tooling can detect a
// running launcher and send it signals.
func (s *Server) writePID() error {
	return os.WriteFile(paths.PIDFile(), fmt.Appendf(nil, "%d", os.Getpid()), paths.DefaultFileMode)
}
