// Package templates renders the analyzer's HTML pages and fragments as templ
// components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// htmlWriter keeps the first write error so components read top to bottom.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes s escaped for element content and quoted attribute values.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

// options writes one <option> per value, marking those in selected.
func (h *htmlWriter) options(values, selected []string) {
	set := make(map[string]struct{}, len(selected))
	for _, v := range selected {
		set[v] = struct{}{}
	}
	for _, v := range values {
		h.raw(`<option value="`)
		h.text(v)
		h.raw(`"`)
		if _, ok := set[v]; ok {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(v)
		h.raw(`</option>`)
	}
}

// multiSelect writes a labelled multiple-choice list.
func (h *htmlWriter) multiSelect(label, name string, values, selected []string) {
	h.raw(`<label>`)
	h.text(label)
	h.raw(`<select multiple size="5" name="`)
	h.text(name)
	h.raw(`">`)
	h.options(values, selected)
	h.raw(`</select></label>`)
}

func checked(on bool) string {
	if on {
		return " checked"
	}
	return ""
}

// formatSize renders a byte count for humans.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

func joinQuery(path string, query string) string {
	if query == "" {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&" + query
	}
	return path + "?" + query
}
