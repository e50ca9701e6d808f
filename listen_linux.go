package main

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listen binds a TCP socket by hand so that the listen backlog is the one
// we ask for and not net.Listen's somaxconn.
func listen(host string, port int, backlog int) (net.Listener, error) {
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("%q is not an IP address", host)
	}

	var (
		domain int
		sa     unix.Sockaddr
	)

	if ip4 := ip.To4(); ip4 != nil {
		sa4 := &unix.SockaddrInet4{Port: port}
		copy(sa4.Addr[:], ip4)
		domain, sa = unix.AF_INET, sa4
	} else {
		sa6 := &unix.SockaddrInet6{Port: port}
		copy(sa6.Addr[:], ip.To16())
		domain, sa = unix.AF_INET6, sa6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket() error: %w", err)
	}

	// net.FileListener dups the descriptor, the original is closed here
	f := os.NewFile(uintptr(fd), fmt.Sprintf("tcp:%s", net.JoinHostPort(host, fmt.Sprint(port))))
	defer f.Close()

	err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if err != nil {
		return nil, fmt.Errorf("setsockopt(SO_REUSEADDR) error: %w", err)
	}

	err = unix.Bind(fd, sa)
	if err != nil {
		return nil, fmt.Errorf("bind() error: %w", err)
	}

	err = unix.Listen(fd, backlog)
	if err != nil {
		return nil, fmt.Errorf("listen() error: %w", err)
	}

	l, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("error while creating listener from socket: %w", err)
	}

	return l, nil
}
