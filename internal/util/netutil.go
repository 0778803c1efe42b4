package util

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
)

// CreateListener creates a net.Listener on the given address.
func CreateListener(network, address string) (net.Listener, error) {
	if network != "tcp" && network != "tcp4" && network != "tcp6" {
		return nil, fmt.Errorf("unsupported network type: %s, only 'tcp', 'tcp4', or 'tcp6' are supported for CreateListener", network)
	}

	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on %s %s: %w", network, address, err)
	}
	return ln, nil
}

// IsAddrInUse checks if the error indicates an "address already in use" condition.
func IsAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}
	// Go's net package often wraps these, e.g. *net.OpError
	return strings.Contains(strings.ToLower(err.Error()), "address already in use")
}

// PortAvailable reports whether nothing is listening on port on any local
// address. It probes by binding the wildcard address and releasing it.
func PortAvailable(port int) bool {
	if port < 1 || port > 65535 {
		return false
	}
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return false
	}
	ln.Close()

	// A loopback-only listener does not always block the wildcard bind.
	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err == nil {
		conn.Close()
		return false
	}
	return true
}

// interfaceAddrs is swapped out in tests.
var interfaceAddrs = net.InterfaceAddrs

// LANAddress returns the machine's private IPv4 address used to expose the
// server on the local network. Addresses in 192.168.0.0/16 are preferred,
// then any other private IPv4.
func LANAddress() (string, error) {
	addrs, err := interfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("failed to list interface addresses: %w", err)
	}

	var fallback string
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil || ip.IsLoopback() || !ip.IsPrivate() {
			continue
		}
		if ip[0] == 192 {
			return ip.String(), nil
		}
		if fallback == "" {
			fallback = ip.String()
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("LAN IP address not found")
	}
	return fallback, nil
}

// IsLocalOrigin reports whether the peer at remoteAddr is the host the server
// runs on: a loopback address, or the same address the connection was
// accepted on. localAddr may be nil.
func IsLocalOrigin(remoteAddr string, localAddr net.Addr) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	remoteIP := net.ParseIP(strings.Trim(host, "[]"))
	if remoteIP == nil {
		return false
	}
	if remoteIP.IsLoopback() {
		return true
	}

	if localAddr == nil {
		return false
	}
	var localIP net.IP
	switch a := localAddr.(type) {
	case *net.TCPAddr:
		localIP = a.IP
	default:
		if h, _, err := net.SplitHostPort(a.String()); err == nil {
			localIP = net.ParseIP(h)
		}
	}
	return localIP != nil && localIP.Equal(remoteIP)
}
