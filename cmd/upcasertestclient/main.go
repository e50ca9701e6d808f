package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
)

var (
	serverAddress    string
	parallel         uint
	requests         uint64
	messageSize      uint
	serverBufferSize uint
	wg               sync.WaitGroup
)

// payload builds a mixed case message of messageSize bytes seeded with a
// fresh request ID.
func payload() []byte {
	id := []byte(uuid.NewString() + "-MiXeD")
	b := make([]byte, messageSize)
	for i := range b {
		b[i] = id[i%len(id)]
	}
	return b
}

func expected(sent []byte) []byte {
	return bytes.Map(func(r rune) rune {
		if 'a' <= r && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}, sent)
}

// isReset reports whether err means the server dropped the connection with
// our input still unread.
func isReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}

// request sends one payload on a fresh connection and checks the reply. A
// payload larger than the server buffer only has to come back as an
// uppercased prefix, and a reset on write or read is expected then.
func request() error {
	c, err := net.Dial("tcp", serverAddress)
	if err != nil {
		return fmt.Errorf("error while connecting to server: %w", err)
	}
	defer c.Close()

	sent := payload()
	truncated := messageSize > serverBufferSize

	_, err = c.Write(sent)
	if err != nil && !(truncated && isReset(err)) {
		return fmt.Errorf("error while sending to server: %w", err)
	}

	got, err := io.ReadAll(c)
	if err != nil && !(truncated && isReset(err)) {
		return fmt.Errorf("error while reading from server: %w", err)
	}

	want := expected(sent)
	if truncated {
		if len(got) > int(serverBufferSize) || !bytes.HasPrefix(want, got) {
			return fmt.Errorf("unexpected reply %q (%d bytes) for %d byte message", got, len(got), len(sent))
		}
		return nil
	}

	if !bytes.Equal(got, want) {
		return fmt.Errorf("unexpected reply %q, want %q", got, want)
	}

	return nil
}

func client(ctx context.Context) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := request(); err != nil {
			log.Fatalf("%s", err)
		}
		atomic.AddUint64(&requests, 1)
	}
}

func main() {
	flag.UintVar(&messageSize, "s", 64, "message size in bytes")
	flag.UintVar(&serverBufferSize, "b", 1024, "server read buffer size in bytes")
	flag.StringVar(&serverAddress, "a", "127.0.0.1:50000", "server address to connect to")
	flag.UintVar(&parallel, "p", 10, "how many parallel connections")
	flag.Parse()

	if messageSize == 0 {
		flag.Usage()
		return
	}

	signalChan := make(chan os.Signal, 1024)

	signal.Notify(signalChan, syscall.SIGINT)

	ctx, cancel := context.WithCancel(context.Background())

	for i := uint(0); i < parallel; i++ {
		wg.Add(1)
		go client(ctx)
	}

	oldValue := atomic.LoadUint64(&requests)
	ticker := time.Tick(time.Second)

	for {
		select {
		case <-ticker:
			newValue := atomic.LoadUint64(&requests)
			log.Printf("%v req/sec", newValue-oldValue)
			oldValue = newValue
		case s := <-signalChan:
			log.Printf("received signal %v, waiting for all clients to exit", s)
			cancel()
			wg.Wait()
			log.Printf("exiting...")
			return
		}
	}
}
