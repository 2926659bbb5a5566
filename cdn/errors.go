package cdn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Kind is the closed classification of an upload failure, decided once
// at the transport boundary. The retry policy and the user-facing error
// messages both key off it instead of matching error strings.
type Kind int

const (
	KindTimeout Kind = iota + 1
	KindConnReset
	KindDNS
	KindHTTP4xx
	KindHTTP5xx
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnReset:
		return "connection_reset"
	case KindDNS:
		return "dns_failure"
	case KindHTTP4xx:
		return "http_4xx"
	case KindHTTP5xx:
		return "http_5xx"
	}
	return "unknown"
}

// Error is the only error type the upload path returns for failures
// past input validation.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cdn upload failed (%s, status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("cdn upload failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether retrying the same request can succeed.
// Only network-level failures qualify; HTTP responses never do.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindConnReset, KindDNS:
		return true
	}
	return false
}

// classify maps a transport error onto the closed Kind enum.
func classify(err error) *Error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindDNS, Err: err}
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return &Error{Kind: KindConnReset, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}

	// Remaining transport failures behave like a dropped connection
	// as far as retrying goes.
	return &Error{Kind: KindConnReset, Err: err}
}
