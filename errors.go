package zcconfig

import (
	"errors"

	goerrors "gopkg.in/src-d/go-errors.v1"
)

// Verification failures. Every error returned by VerifyAndView and Verify is
// an instance of exactly one of these kinds; the message carries the path of
// the offending field and its position in the buffer.
var (
	ErrTooShort                   = goerrors.NewKind("buffer too short: %d bytes, need at least %d")
	ErrOffsetOutOfBounds          = goerrors.NewKind("%s: offset out of bounds: %s")
	ErrMisalignedOrTruncatedField = goerrors.NewKind("%s: misaligned or truncated: %s")
	ErrSizeOverflow               = goerrors.NewKind("%s: size overflow: %s")
	ErrRecursionLimitExceeded     = goerrors.NewKind("%s: recursion limit exceeded: %s")
	ErrInvalidString              = goerrors.NewKind("%s: invalid string: %s")
	ErrRequiredFieldMissing       = goerrors.NewKind("%s: required field missing")
	ErrIdentifierMismatch         = goerrors.NewKind("file identifier %q does not match %q")
)

var verificationKinds = []*goerrors.Kind{
	ErrTooShort,
	ErrOffsetOutOfBounds,
	ErrMisalignedOrTruncatedField,
	ErrSizeOverflow,
	ErrRecursionLimitExceeded,
	ErrInvalidString,
	ErrRequiredFieldMissing,
	ErrIdentifierMismatch,
}

// IsVerificationError reports whether err, or anything it wraps, is a
// verification failure.
func IsVerificationError(err error) bool {
	return isKind(err, verificationKinds...)
}

// IsOutOfBounds reports whether err is one of the out-of-bounds class: the
// buffer is too short, an offset escapes it or a field is cut short.
func IsOutOfBounds(err error) bool {
	return isKind(err, ErrTooShort, ErrOffsetOutOfBounds, ErrMisalignedOrTruncatedField)
}

func isKind(err error, kinds ...*goerrors.Kind) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		for _, k := range kinds {
			if k.Is(err) {
				return true
			}
		}
	}
	return false
}
