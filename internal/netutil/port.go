// Package netutil picks a listen address for the dashboard server.
package netutil

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
)

var ErrNoAddr = errors.New("no available bind address")

// Listen binds preferred, or the first fallback that is free when preferred
// is taken. The listener is returned open so the port cannot be lost
// between the check and the bind.
func Listen(preferred string, fallbacks []string) (net.Listener, error) {
	tried := make([]string, 0, len(fallbacks)+1)
	for _, addr := range append([]string{preferred}, fallbacks...) {
		if addr == "" {
			continue
		}
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			if len(tried) > 0 {
				slog.Warn("preferred bind address unavailable, using fallback", "preferred", preferred, "addr", ln.Addr().String())
			}
			return ln, nil
		}
		slog.Debug("bind address unavailable", "addr", addr, "error", err)
		tried = append(tried, addr)
	}
	return nil, fmt.Errorf("%w: tried %v", ErrNoAddr, tried)
}
