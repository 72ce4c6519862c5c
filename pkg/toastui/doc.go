// Package toastui renders toast queues and serves the HTTP endpoints a
// browser needs to show and dismiss them.
//
// Components are templ components, so they can be embedded in any templ
// layout or patched over datastar SSE:
//
//	toastui.Container("/toasts", toasts)
//
// Handler mounts the endpoints under a base path (default "/toasts"). All of
// them expect toast.Middleware upstream; without it they panic with
// toast.ErrNoManager, which chi's Recoverer turns into a 500.
//
//	GET    /toasts             container fragment (HTML or datastar patch)
//	GET    /toasts/stream      datastar SSE stream, re-patched on every change
//	POST   /toasts             add a toast from form fields message, kind, duration_ms, sticky;
//	                           session or relay push it through WithPusher
//	DELETE /toasts/{id}        dismiss (datastar patch or HTML fragment)
//	POST   /toasts/{id}/dismiss dismiss without JavaScript, then redirect back
package toastui
