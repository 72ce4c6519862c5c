package toastui

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/toastkit/pkg/toast"
)

// ContainerID is the DOM id of the toast container. Patches target it.
const ContainerID = "toast-container"

// DataStarScript is the datastar client bundle loaded by Page.
const DataStarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

var icons = map[toast.Kind]string{
	toast.KindSuccess: "✓",
	toast.KindError:   "✕",
	toast.KindWarning: "⚠",
	toast.KindInfo:    "ℹ",
}

// Icon returns the glyph shown next to a toast of kind k.
func Icon(k toast.Kind) string {
	if icon, ok := icons[k]; ok {
		return icon
	}
	return icons[toast.KindInfo]
}

// ItemID returns the DOM id of the toast with the given id.
func ItemID(id string) string {
	return "toast-" + id
}

// Container renders the live region holding toasts in order. It is rendered
// even when empty so it stays addressable by patches.
func Container(basePath string, toasts []toast.Toast) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeContainer(&b, basePath, toasts)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Item renders a single toast.
func Item(basePath string, t toast.Toast) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeItem(&b, basePath, t)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Page renders a standalone demo page: a producer form, the container, and a
// datastar stream subscription that keeps the container current.
func Page(title, basePath string, toasts []toast.Toast) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>`)
		b.WriteString(templ.EscapeString(title))
		b.WriteString(`</title><script type="module" src="`)
		b.WriteString(DataStarScript)
		b.WriteString(`"></script><style>`)
		b.WriteString(pageStyle)
		b.WriteString(`</style></head><body data-init="@get('`)
		b.WriteString(templ.EscapeString(basePath + "/stream"))
		b.WriteString(`')"><main><h1>`)
		b.WriteString(templ.EscapeString(title))
		b.WriteString(`</h1>`)
		writeForm(&b, basePath)
		b.WriteString(`</main>`)
		writeContainer(&b, basePath, toasts)
		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeContainer(b *strings.Builder, basePath string, toasts []toast.Toast) {
	b.WriteString(`<div id="`)
	b.WriteString(ContainerID)
	b.WriteString(`" class="toast-container" role="status" aria-live="polite" aria-atomic="true">`)
	for _, t := range toasts {
		writeItem(b, basePath, t)
	}
	b.WriteString(`</div>`)
}

func writeItem(b *strings.Builder, basePath string, t toast.Toast) {
	kind := t.Kind
	if !kind.Valid() {
		kind = toast.KindInfo
	}
	// Path-escaped ids cannot break out of the @delete expression.
	action := templ.EscapeString(basePath + "/" + url.PathEscape(t.ID))

	b.WriteString(`<div id="`)
	b.WriteString(templ.EscapeString(ItemID(t.ID)))
	b.WriteString(`" class="toast toast-`)
	b.WriteString(kind.String())
	b.WriteString(`" data-kind="`)
	b.WriteString(kind.String())
	b.WriteString(`">`)
	b.WriteString(`<span class="toast-icon" aria-hidden="true">`)
	b.WriteString(Icon(kind))
	b.WriteString(`</span><span class="toast-message">`)
	b.WriteString(templ.EscapeString(t.Message))
	b.WriteString(`</span>`)
	// The form posts without JavaScript; datastar intercepts the click.
	b.WriteString(`<form method="post" action="`)
	b.WriteString(action)
	b.WriteString(`/dismiss"><button type="submit" class="toast-close" aria-label="Close notification" data-on:click__prevent="@delete('`)
	b.WriteString(action)
	b.WriteString(`')">×</button></form></div>`)
}

func writeForm(b *strings.Builder, basePath string) {
	action := templ.EscapeString(basePath)
	b.WriteString(`<form class="toast-form" method="post" action="`)
	b.WriteString(action)
	b.WriteString(`" data-on:submit__prevent="@post('`)
	b.WriteString(action)
	b.WriteString(`', {contentType: 'form'})">`)
	b.WriteString(`<label>Message <input name="message" required></label>`)
	b.WriteString(`<label>Kind <select name="kind">`)
	for _, k := range toast.Kinds {
		b.WriteString(`<option value="`)
		b.WriteString(k.String())
		b.WriteString(`">`)
		b.WriteString(k.String())
		b.WriteString(`</option>`)
	}
	b.WriteString(`</select></label>`)
	b.WriteString(`<label>Duration (ms) <input name="duration_ms" type="number" min="0" value="`)
	b.WriteString(strconv.FormatInt(toast.DefaultDuration.Milliseconds(), 10))
	b.WriteString(`"></label>`)
	b.WriteString(`<label><input name="sticky" type="checkbox" value="true"> Sticky</label>`)
	b.WriteString(`<label><input name="relay" type="checkbox" value="true"> Via relay</label>`)
	b.WriteString(`<label>Session <input name="session" placeholder="this session"></label>`)
	b.WriteString(`<button type="submit">Show toast</button></form>`)
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem}
.toast-form{display:flex;gap:.75rem;flex-wrap:wrap;align-items:end}
.toast-container{position:fixed;top:1rem;right:1rem;display:flex;flex-direction:column;gap:.5rem;z-index:50}
.toast{display:flex;align-items:center;gap:.5rem;min-width:16rem;padding:.75rem 1rem;border-radius:.5rem;color:#fff;box-shadow:0 2px 8px rgba(0,0,0,.2)}
.toast form{margin-left:auto}
.toast-close{background:none;border:0;color:inherit;font-size:1.25rem;cursor:pointer}
.toast-success{background:#15803d}.toast-error{background:#b91c1c}.toast-warning{background:#b45309}.toast-info{background:#1d4ed8}`
