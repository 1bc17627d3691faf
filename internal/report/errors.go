package report

import "errors"

var (
	// ErrTokenInvalid is returned for unknown tokens and for tokens whose
	// client no longer exists. The remediation is to verify the link.
	ErrTokenInvalid = errors.New("report: token invalid")

	// ErrTokenExpired is returned for tokens past their expiry. The
	// remediation is to request a new link.
	ErrTokenExpired = errors.New("report: token expired")
)
