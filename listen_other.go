//go:build !linux

package main

import (
	"fmt"
	"net"
	"strconv"
)

// listen falls back to net.Listen. The backlog is left to the OS.
func listen(host string, port int, backlog int) (net.Listener, error) {
	if net.ParseIP(host) == nil {
		return nil, fmt.Errorf("%q is not an IP address", host)
	}

	l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("error while listening: %w", err)
	}

	return l, nil
}
