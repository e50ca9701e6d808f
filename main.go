package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := DefaultConfig()

	flag.StringVar(&cfg.Host, "host", cfg.Host, "IP address to listen on")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	flag.IntVar(&cfg.Backlog, "backlog", cfg.Backlog, "listen backlog")
	flag.IntVar(&cfg.BufferSize, "s", cfg.BufferSize, "read buffer size in bytes")
	flag.Parse()

	signalChan := make(chan os.Signal, 1)

	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		s := <-signalChan
		log.Printf("received signal %v, shutting down", s)
		cancel()
	}()

	if err := Run(ctx, cfg); err != nil {
		log.Fatalf("%s", err)
	}

	log.Printf("exiting...")
}
