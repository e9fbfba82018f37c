package runner

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// classifyError maps a transport failure onto one of a closed set of
// descriptive sentences. Callers render these directly, so the wording
// stays fixed per failure kind.
func classifyError(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "Could not resolve host. Check the URL and your network connection."
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return "Connection refused. The server may be down or unreachable."
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return "Connection reset by the server before the response completed."
	}

	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return "Request timed out. The server did not respond in time."
	}
	if errors.Is(err, context.Canceled) {
		return "Request was cancelled."
	}

	if isTLSError(err) {
		return "TLS certificate verification failed. The connection is not trusted."
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return "Invalid URL. Check the request URL and base URL configuration."
	}

	return "Request failed: " + err.Error()
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isTLSError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		invalidCert      x509.CertificateInvalidError
		recordHeader     tls.RecordHeaderError
		certVerify       *tls.CertificateVerificationError
	)
	return errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert) ||
		errors.As(err, &recordHeader) ||
		errors.As(err, &certVerify)
}
