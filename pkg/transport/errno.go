package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// Symbolic system error codes reported in TransportError.Code.
const (
	CodeNotFound       = "ENOTFOUND"
	CodeConnRefused    = "ECONNREFUSED"
	CodeConnReset      = "ECONNRESET"
	CodeTimedOut       = "ETIMEDOUT"
	CodePipe           = "EPIPE"
	CodeNetUnreachable = "ENETUNREACH"
	CodeHostUnreach    = "EHOSTUNREACH"
	CodeAddrInUse      = "EADDRINUSE"
	CodeAgain          = "EAI_AGAIN"
	CodeCanceled       = "ECANCELED"
)

var errnoCodes = []struct {
	errno syscall.Errno
	code  string
}{
	{syscall.ECONNREFUSED, CodeConnRefused},
	{syscall.ECONNRESET, CodeConnReset},
	{syscall.EPIPE, CodePipe},
	{syscall.ENETUNREACH, CodeNetUnreachable},
	{syscall.EHOSTUNREACH, CodeHostUnreach},
	{syscall.EADDRINUSE, CodeAddrInUse},
	{syscall.ETIMEDOUT, CodeTimedOut},
}

// ErrnoCode maps an error from the network stack to its symbolic code.
// It returns "" when the error has no known system cause.
func ErrnoCode(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) {
		return CodeCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimedOut
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsTimeout:
			return CodeTimedOut
		case dnsErr.IsTemporary && !dnsErr.IsNotFound:
			return CodeAgain
		default:
			return CodeNotFound
		}
	}

	for _, e := range errnoCodes {
		if errors.Is(err, e.errno) {
			return e.code
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimedOut
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return CodeConnReset
	}

	return ""
}
