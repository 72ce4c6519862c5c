// Package toast keeps a transient, ordered queue of user-facing
// notifications ("toasts") with optional auto-expiry.
//
// A Manager owns one queue. Producers post messages; a renderer reads the
// ordered collection and binds a close button to Remove:
//
//	m := toast.New()
//	id := m.Success("Profile saved")
//	m.Error("Upload failed", toast.Sticky())
//	m.Info("Syncing", toast.WithDuration(2*time.Second))
//
//	for _, t := range m.List() { // oldest first
//		render(t)
//	}
//	m.Remove(id) // idempotent, cancels the expiry timer
//
// Every toast gets a fresh UUIDv7 id. A toast with a positive duration is
// removed when the duration elapses, unless it was removed earlier. A zero
// duration (Sticky) never expires; negative durations are treated as zero.
// Add, Remove and List never fail, whatever the input.
//
// # Provisioning
//
// Web handlers reach their session's Manager through the request context.
// Middleware resolves a per-browser Manager from a Registry and stores it
// with WithContext; the package-level helpers then work anywhere downstream:
//
//	func save(w http.ResponseWriter, r *http.Request) {
//		toast.Success(r.Context(), "Saved")
//	}
//
// Using the helpers (or MustFromContext) on a context without a Manager is a
// wiring bug and panics with ErrNoManager. FromContext returns the error
// instead, for code that can cope without toasts.
//
// # Observing changes
//
// Subscribe streams Event values (added / removed with a reason). Watch is a
// coalescing "queue changed" signal; an SSE handler re-renders from List on
// each receive and never falls behind.
//
// # Cross-instance delivery
//
// Registry.Push sends an Envelope through the registry's relay broadcaster
// (in-memory or Redis). Registry.Listen applies envelopes addressed to
// sessions that live on the current instance.
package toast
