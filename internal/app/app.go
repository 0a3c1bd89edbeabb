// Package app wires targets, the secret reporter and the renderer into the
// program's output.
package app

import (
	"context"
	"fmt"
	"io"

	"vinr.eu/kubesecrets/internal/config"
	"vinr.eu/kubesecrets/internal/logger"
	"vinr.eu/kubesecrets/internal/render"
	"vinr.eu/kubesecrets/internal/secret"
)

// Source never fails; failures show up as empty secrets.
type Source interface {
	Fetch(ctx context.Context, name string) secret.Decoded
}

// Run fetches targets one after the other and prints "<Label> Data: <secret>"
// for each. It returns an error only when output cannot be produced.
func Run(ctx context.Context, src Source, targets []config.Target, r render.Renderer, out io.Writer) error {
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		decoded := src.Fetch(ctx, t.Name)
		line, err := r.Render(decoded)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", t.Name, err)
		}
		logger.Debug(ctx, "printing secret", "label", t.Label, "fields", len(decoded))
		if _, err := fmt.Fprintf(out, "%s Data: %s\n", t.Label, line); err != nil {
			return err
		}
	}
	return nil
}

// RunKey prints one field of each target per line. A missing field prints an
// empty line so output stays aligned with the targets.
func RunKey(ctx context.Context, src Source, targets []config.Target, key string, out io.Writer) error {
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		decoded := src.Fetch(ctx, t.Name)
		value, ok := decoded[key]
		if !ok {
			logger.Warn(ctx, "field not present in secret", "secret", t.Name, "key", key)
		}
		if _, err := fmt.Fprintln(out, value); err != nil {
			return err
		}
	}
	return nil
}
