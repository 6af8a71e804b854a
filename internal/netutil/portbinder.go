// Package netutil pre-binds the daemon's listening socket so the port is
// held from configuration time until the HTTP server takes it over, and
// classifies common socket errors.
package netutil

import (
	"errors"
	"fmt"
	"net"
)

// AddressInUseError is a bind failure because the port is taken. It keeps the
// original error for errors.Is checks.
type AddressInUseError struct {
	Port    int
	Address string
	Err     error
}

func (e *AddressInUseError) Error() string {
	return fmt.Sprintf("port %d is already in use on %s", e.Port, e.Address)
}

func (e *AddressInUseError) Unwrap() error {
	return e.Err
}

// PortBinder reserves TCP ports by binding them immediately.
type PortBinder struct{}

// NewPortBinder creates a PortBinder.
func NewPortBinder() *PortBinder {
	return &PortBinder{}
}

// BindTCP binds an IPv4 TCP listener on address:port. The port stays
// reserved until the returned listener is closed.
func (pb *PortBinder) BindTCP(address string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(address, fmt.Sprintf("%d", port))

	listener, err := net.Listen("tcp4", addr)
	if err != nil {
		if IsAddressInUseError(err) {
			return nil, &AddressInUseError{
				Port:    port,
				Address: address,
				Err:     err,
			}
		}
		return nil, fmt.Errorf("failed to bind TCP to %s: %w", addr, err)
	}

	return listener, nil
}

// BindTCPWithFallback binds preferredPort, or the next free port after it
// when it is taken. Returns the listener and the port actually bound.
func (pb *PortBinder) BindTCPWithFallback(address string, preferredPort int) (net.Listener, int, error) {
	return pb.BindTCPWithFallbackAndLimit(address, preferredPort, 100)
}

// BindTCPWithFallbackAndLimit is BindTCPWithFallback trying at most
// maxAttempts consecutive ports.
func (pb *PortBinder) BindTCPWithFallbackAndLimit(address string, preferredPort, maxAttempts int) (net.Listener, int, error) {
	if maxAttempts <= 0 {
		return nil, 0, fmt.Errorf("maxAttempts must be positive, got %d", maxAttempts)
	}

	for port := preferredPort; port < preferredPort+maxAttempts && port <= 65535; port++ {
		listener, err := pb.BindTCP(address, port)
		if err != nil {
			var addrInUseErr *AddressInUseError
			if errors.As(err, &addrInUseErr) {
				continue
			}
			return nil, 0, fmt.Errorf("failed to bind TCP starting from port %d: %w", preferredPort, err)
		}

		return listener, port, nil
	}

	return nil, 0, fmt.Errorf("no available TCP port found in range %d-%d on %s",
		preferredPort, preferredPort+maxAttempts-1, address)
}

// GetListenerPort returns the port a TCP listener is bound to, which differs
// from the requested one after a fallback or when port 0 was requested.
func (pb *PortBinder) GetListenerPort(listener net.Listener) (int, error) {
	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("listener is not a TCP listener: %T", listener.Addr())
	}

	return tcpAddr.Port, nil
}
