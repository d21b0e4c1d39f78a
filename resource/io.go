package resource

import (
	"context"
	"io"
)

// RateLimitedWriter wraps an io.Writer with the controller's IO limit.
type RateLimitedWriter struct {
	ctx context.Context
	rc  *Controller
	w   io.Writer
}

// NewRateLimitedWriter creates a new RateLimitedWriter. The context bounds
// how long writes may wait for IO budget.
func NewRateLimitedWriter(ctx context.Context, rc *Controller, w io.Writer) *RateLimitedWriter {
	return &RateLimitedWriter{
		ctx: ctx,
		rc:  rc,
		w:   w,
	}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReader wraps an io.Reader with the controller's IO limit.
type RateLimitedReader struct {
	ctx context.Context
	rc  *Controller
	r   io.Reader
}

// NewRateLimitedReader creates a new RateLimitedReader. The context bounds
// how long reads may wait for IO budget.
func NewRateLimitedReader(ctx context.Context, rc *Controller, r io.Reader) *RateLimitedReader {
	return &RateLimitedReader{
		ctx: ctx,
		rc:  rc,
		r:   r,
	}
}

// Read charges the full buffer size up front. Short reads overcharge a
// little, which keeps the accounting conservative.
func (r *RateLimitedReader) Read(p []byte) (int, error) {
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
