package secret

import (
	"context"
	"fmt"
	"io"
	"time"

	"vinr.eu/kubesecrets/internal/logger"
)

const diagnosticPrefix = "An error occurred: "

// Reporter absorbs backend failures. A failed fetch writes one diagnostic line
// and yields an empty mapping, so callers never see an error.
type Reporter struct {
	fetcher Fetcher
	diag    io.Writer
	timeout time.Duration
}

type ReporterOption func(*Reporter)

// WithTimeout bounds every fetch. Zero leaves the caller's deadline alone.
func WithTimeout(d time.Duration) ReporterOption {
	return func(r *Reporter) {
		r.timeout = d
	}
}

func NewReporter(fetcher Fetcher, diag io.Writer, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		fetcher: fetcher,
		diag:    diag,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reporter) Fetch(ctx context.Context, name string) Decoded {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logger.Debug(ctx, "fetching secret", "name", name)
	decoded, err := r.fetcher.Fetch(ctx, name)
	if err != nil {
		logger.Debug(ctx, "fetch failed", "name", name, "error", err)
		fmt.Fprintln(r.diag, diagnosticPrefix+err.Error())
		return Decoded{}
	}
	if decoded == nil {
		decoded = Decoded{}
	}
	logger.Debug(ctx, "fetched secret", "name", name, "fields", len(decoded))
	return decoded
}
