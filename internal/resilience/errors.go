package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsConnectionError reports whether err looks like a connection-level
// database failure that a fresh attempt on another connection may survive.
// Statement-level errors (constraint violations, bad SQL) are not retryable:
// they would fail identically on every attempt.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	// SQLSTATE classes and codes raised when the server side goes away.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case pgErr.Code == "57P01": // admin_shutdown
			return true
		case pgErr.Code == "57P02": // crash_shutdown
			return true
		case pgErr.Code == "57P03": // cannot_connect_now
			return true
		case pgErr.Code == "53300": // too_many_connections
			return true
		default:
			return false
		}
	}

	// Network-level failures underneath the driver.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	// pgx wraps some connection deaths in plain errors.
	msg := strings.ToLower(err.Error())
	connPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"unexpected eof",
		"conn closed",
		"closed pool",
		"i/o timeout",
		"server closed the connection",
		"failed to connect",
	}
	for _, p := range connPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
