package remote

import (
	"context"
	stderrors "errors"

	"github.com/jmgilman/go/errors"
)

// transportError classifies a failed Redis round trip.
func transportError(err error, op, key string) error {
	code := errors.CodeNetwork
	if stderrors.Is(err, context.DeadlineExceeded) {
		code = errors.CodeTimeout
	}
	wrapped := errors.Wrapf(err, code, "redis %s failed", op)
	if key != "" {
		return errors.WithContext(wrapped, "key", key)
	}
	return wrapped
}
