// Package secret holds the data model shared by every secret backend and the
// reporting wrapper that turns backend failures into diagnostics.
package secret

import (
	"context"
	"encoding/base64"
	"errors"
	"unicode/utf8"

	"vinr.eu/kubesecrets/internal/errs"
)

var (
	ErrLookupFailed    = errors.New("secret: lookup failed")
	ErrMalformedOutput = errors.New("secret: malformed output")
	ErrDecodeFailed    = errors.New("secret: decode failed")
)

// Record maps field names to base64 encoded values, as served by the control
// plane.
type Record map[string]string

// Decoded maps field names to plaintext values.
type Decoded map[string]string

// Fetcher retrieves one named secret. Implementations return errors wrapping
// one of the package sentinels.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (Decoded, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, name string) (Decoded, error)

func (f FetcherFunc) Fetch(ctx context.Context, name string) (Decoded, error) {
	return f(ctx, name)
}

// Decode base64 decodes every value of r. The decoded bytes must be valid
// UTF-8.
func Decode(r Record) (Decoded, error) {
	out := make(Decoded, len(r))
	for key, value := range r {
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, errs.WrapMsgErr(ErrDecodeFailed, "field "+key, err)
		}
		text, err := Text(key, raw)
		if err != nil {
			return nil, err
		}
		out[key] = text
	}
	return out, nil
}

// Text converts an already decoded value into a string.
func Text(key string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errs.WrapMsg(ErrDecodeFailed, "field "+key+" is not valid utf-8")
	}
	return string(raw), nil
}
