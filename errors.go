package gibbsgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/gibbsgo/blobstore"
	"github.com/hupe1980/gibbsgo/checkpoint"
)

var (
	// ErrClosed is returned by operations on a closed Run.
	ErrClosed = errors.New("run is closed")

	// ErrNoStore is returned by checkpoint and report operations when the
	// run was opened without a blob store.
	ErrNoStore = errors.New("no blob store configured")

	// ErrNotFound unifies the not-found failures of the underlying blob
	// store (missing checkpoints, missing CURRENT pointer).
	ErrNotFound = errors.New("not found")

	// ErrThrottled reports a checkpoint attempt inside the configured
	// minimum interval. Re-exported so callers need not import the
	// checkpoint package for the common case.
	ErrThrottled = checkpoint.ErrThrottled
)

// translateError maps internal errors onto the facade's sentinels.
// Structured errors such as *alchemy.ParseError and
// *checkpoint.ChecksumMismatchError pass through and stay matchable via
// errors.As.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, checkpoint.ErrManagerClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
