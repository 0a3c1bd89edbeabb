// Package render formats decoded secrets for the terminal.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"
	"vinr.eu/kubesecrets/internal/errs"
	"vinr.eu/kubesecrets/internal/secret"
)

var (
	ErrUnknownFormat = errors.New("render: unknown format")
	ErrEncodeFailed  = errors.New("render: encode failed")
)

// Renderer turns a decoded secret into a single line.
type Renderer interface {
	Render(secret.Decoded) (string, error)
}

type RendererFunc func(secret.Decoded) (string, error)

func (f RendererFunc) Render(d secret.Decoded) (string, error) {
	return f(d)
}

func New(format string) (Renderer, error) {
	switch format {
	case "repr", "":
		return RendererFunc(Repr), nil
	case "json":
		return RendererFunc(JSON), nil
	case "yaml":
		return RendererFunc(YAML), nil
	default:
		return nil, errs.WrapMsg(ErrUnknownFormat, format)
	}
}

// Repr renders d as a Python dict literal with keys in sorted order, e.g.
// {'password': 'pass123'}.
func Repr(d secret.Decoded) (string, error) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(k))
		b.WriteString(": ")
		b.WriteString(quote(d[k]))
	}
	b.WriteByte('}')
	return b.String(), nil
}

// quote follows Python's str repr: single quotes unless the text contains a
// single quote and no double quote.
func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteRune(q)
	for _, r := range s {
		switch {
		case r == q || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case !unicode.IsPrint(r):
			switch {
			case r <= 0xff:
				fmt.Fprintf(&b, `\x%02x`, r)
			case r <= 0xffff:
				fmt.Fprintf(&b, `\u%04x`, r)
			default:
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(q)
	return b.String()
}

func JSON(d secret.Decoded) (string, error) {
	if d == nil {
		d = secret.Decoded{}
	}
	out, err := json.Marshal(d)
	if err != nil {
		return "", errs.Wrap(ErrEncodeFailed, err)
	}
	return string(out), nil
}

func YAML(d secret.Decoded) (string, error) {
	if d == nil {
		d = secret.Decoded{}
	}
	out, err := yaml.MarshalWithOptions(map[string]string(d), yaml.Flow(true))
	if err != nil {
		return "", errs.Wrap(ErrEncodeFailed, err)
	}
	return strings.TrimSpace(string(out)), nil
}
