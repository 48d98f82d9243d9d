package llm

import (
	"errors"
	"fmt"
)

// TransientError marks transport-level failures (timeout, connection reset,
// 5xx). These are the only failures the semantic layer retries.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient service error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// QuotaError marks rate-limit or quota rejections. Never retried; logged
// distinctly for operational alerting.
type QuotaError struct {
	Err error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: %v", e.Err)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// MalformedError marks responses that do not parse into one of the two
// expected labels. Never retried.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

// IsTransient reports whether err is a transient service error
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsQuota reports whether err is a quota/rate-limit rejection
func IsQuota(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// IsMalformed reports whether err is a malformed-response failure
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}
