package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"

	"github.com/google/uuid"
)

const (
	defaultHost       = "127.0.0.1"
	defaultPort       = 50000
	defaultBacklog    = 5
	defaultBufferSize = 1024
)

type Config struct {
	Host       string
	Port       int
	Backlog    int
	BufferSize int
}

func DefaultConfig() Config {
	return Config{
		Host:       defaultHost,
		Port:       defaultPort,
		Backlog:    defaultBacklog,
		BufferSize: defaultBufferSize,
	}
}

// Server serves one connection at a time: a single read of at most
// BufferSize bytes, uppercased and written back, then the connection is
// closed.
type Server struct {
	cfg Config
	l   net.Listener
}

// Listen binds the listening socket described by cfg.
func Listen(cfg Config) (*Server, error) {
	if cfg.BufferSize <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d", cfg.BufferSize)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Backlog <= 0 {
		return nil, fmt.Errorf("invalid backlog %d", cfg.Backlog)
	}

	l, err := listen(cfg.Host, cfg.Port, cfg.Backlog)
	if err != nil {
		return nil, fmt.Errorf("error while listening on %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &Server{cfg: cfg, l: l}, nil
}

func (s *Server) Addr() net.Addr {
	return s.l.Addr()
}

// Serve accepts and serves connections until ctx is cancelled, in which case
// it returns nil, or until accept fails. The listener is closed on return.
func (s *Server) Serve(ctx context.Context) error {
	defer s.l.Close()

	stop := context.AfterFunc(ctx, func() {
		s.l.Close()
	})
	defer stop()

	buf := make([]byte, s.cfg.BufferSize)

	for {
		c, err := s.l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("error while accepting: %w", err)
		}

		s.serveConn(ctx, c, buf)
	}
}

func (s *Server) serveConn(ctx context.Context, c net.Conn, buf []byte) {
	id := uuid.New()

	defer c.Close()

	// unblocks read and write on shutdown
	stop := context.AfterFunc(ctx, func() {
		c.Close()
	})
	defer stop()

	log.Printf("accepted connection %s (%s <-> %s)", id, c.RemoteAddr(), c.LocalAddr())

	n, err := c.Read(buf)
	if n > 0 {
		upper(buf[:n])

		_, werr := c.Write(buf[:n])
		if werr != nil {
			log.Printf("connection %s: error while writing: %s", id, werr)
			return
		}
	}

	if err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
		log.Printf("connection %s: error while reading: %s", id, err)
		return
	}

	if n == 0 {
		log.Printf("connection %s: closed without data", id)
		return
	}

	log.Printf("connection %s: echoed %d bytes", id, n)
}

// Run binds cfg and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	s, err := Listen(cfg)
	if err != nil {
		return err
	}

	log.Printf("listening on %s", s.Addr())

	return s.Serve(ctx)
}
