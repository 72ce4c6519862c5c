package toastui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/toastkit/pkg/logger"
	"github.com/dmitrymomot/toastkit/pkg/toast"
)

const (
	// DefaultBasePath is where Handler expects its routes to be mounted.
	DefaultBasePath = "/toasts"
	// DefaultTitle is the demo page title.
	DefaultTitle = "Toasts"
)

var (
	// ErrInvalidDuration is returned for a duration_ms field that is not a
	// non-negative integer of at most toast.MaxDurationMillis.
	ErrInvalidDuration = errors.New("toastui: invalid duration_ms")

	// ErrNoPusher is returned when a toast is addressed to a session but the
	// handler has no Pusher.
	ErrNoPusher = errors.New("toastui: pushing to a session is not configured")
)

// Pusher delivers a toast to a session that may live on another instance.
// *toast.Registry implements it.
type Pusher interface {
	Push(ctx context.Context, env toast.Envelope) error
}

// Handler serves the toast page, container and stream endpoints.
type Handler struct {
	basePath string
	title    string
	pusher   Pusher
	logger   *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithBasePath sets the path prefix the routes are mounted under.
func WithBasePath(p string) HandlerOption {
	return func(h *Handler) {
		if p != "" {
			h.basePath = p
		}
	}
}

// WithTitle sets the demo page title.
func WithTitle(title string) HandlerOption {
	return func(h *Handler) {
		h.title = title
	}
}

// WithPusher lets Create address toasts to sessions through p.
func WithPusher(p Pusher) HandlerOption {
	return func(h *Handler) {
		h.pusher = p
	}
}

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates a Handler.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		basePath: DefaultBasePath,
		title:    DefaultTitle,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("toastui"))
	return h
}

// BasePath returns the path prefix the routes expect.
func (h *Handler) BasePath() string {
	return h.basePath
}

// Routes returns a router to mount at BasePath.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Container)
	r.Post("/", h.Create)
	r.Get("/stream", h.Stream)
	r.Delete("/{id}", h.Dismiss)
	r.Post("/{id}/dismiss", h.DismissForm)
	return r
}

// Page renders the demo page with the session's current toasts.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(h.title, h.basePath, toast.List(r.Context())).Render(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render toast page", logger.Error(err))
	}
}

// Container renders the container once, as a datastar patch or plain HTML.
func (h *Handler) Container(w http.ResponseWriter, r *http.Request) {
	h.renderContainer(w, r, http.StatusOK)
}

// Stream keeps a datastar SSE connection open and patches the container
// after changes to the session's queue. Bursts of changes produce one patch
// of the latest state. It ends when the client disconnects or the queue is
// closed.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	m := toast.MustFromContext(ctx)

	// Watch before the first render so no change falls between them.
	changed := m.Watch(ctx)

	sse := datastar.NewSSE(w, r)
	h.logger.DebugContext(ctx, "toast stream opened")
	defer h.logger.DebugContext(ctx, "toast stream closed")

	if err := h.patch(sse, m.List()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changed:
			if !ok {
				return
			}
			if err := h.patch(sse, m.List()); err != nil {
				return
			}
		}
	}
}

// Create adds a toast from form fields message, kind, duration_ms and
// sticky. With a session field, or relay set, the toast goes through the
// handler's Pusher to that session (or the caller's own), wherever it lives.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := parseToastForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if target := f.target(ctx); target != "" {
		if h.pusher == nil {
			http.Error(w, ErrNoPusher.Error(), http.StatusBadRequest)
			return
		}
		if err := h.pusher.Push(ctx, f.envelope(target)); err != nil {
			h.logger.ErrorContext(ctx, "failed to push toast", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		h.logger.DebugContext(ctx, "toast pushed via http", slog.String("target_session", target))
	} else {
		id := toast.Add(ctx, f.message, f.options()...)
		h.logger.DebugContext(ctx, "toast created via http", logger.ToastID(id))
	}

	if IsDataStar(r) || IsHTMX(r) {
		h.renderContainer(w, r, http.StatusCreated)
		return
	}
	redirectBack(w, r)
}

// Dismiss removes the toast named by the {id} route parameter.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	toast.Remove(r.Context(), toastID(r))

	if IsDataStar(r) || IsHTMX(r) {
		h.renderContainer(w, r, http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DismissForm is the no-JavaScript variant of Dismiss.
func (h *Handler) DismissForm(w http.ResponseWriter, r *http.Request) {
	toast.Remove(r.Context(), toastID(r))
	redirectBack(w, r)
}

func (h *Handler) renderContainer(w http.ResponseWriter, r *http.Request, status int) {
	toasts := toast.List(r.Context())
	if IsDataStar(r) {
		_ = h.patch(datastar.NewSSE(w, r), toasts)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := Container(h.basePath, toasts).Render(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render toast container", logger.Error(err))
	}
}

func (h *Handler) patch(sse *datastar.ServerSentEventGenerator, toasts []toast.Toast) error {
	if err := sse.PatchElementTempl(Container(h.basePath, toasts), datastar.WithSelector("#"+ContainerID)); err != nil {
		if !errors.Is(err, context.Canceled) {
			h.logger.Warn("failed to patch toast container", logger.Error(err))
		}
		return err
	}
	return nil
}

// toastID returns the {id} route parameter. chi matches on the raw path
// when it has escapes, so the parameter is unescaped here.
func toastID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(id); err == nil {
			return unescaped
		}
	}
	return id
}

type toastForm struct {
	message     string
	kind        toast.Kind
	durationMs  int64
	hasDuration bool
	sticky      bool
	session     string
	relay       bool
}

func parseToastForm(r *http.Request) (toastForm, error) {
	if err := r.ParseForm(); err != nil {
		return toastForm{}, err
	}
	f := toastForm{
		message: r.FormValue("message"),
		kind:    toast.ParseKind(r.FormValue("kind")),
		sticky:  formBool(r.FormValue("sticky")),
		session: r.FormValue("session"),
		relay:   formBool(r.FormValue("relay")),
	}
	if raw := r.FormValue("duration_ms"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms < 0 || ms > toast.MaxDurationMillis {
			return toastForm{}, ErrInvalidDuration
		}
		f.durationMs, f.hasDuration = ms, true
	}
	return f, nil
}

// target returns the session to push to, or "" to add locally.
func (f toastForm) target(ctx context.Context) string {
	if f.session != "" {
		return f.session
	}
	if f.relay {
		id, _ := toast.SessionID(ctx)
		return id
	}
	return ""
}

func (f toastForm) options() []toast.AddOption {
	opts := []toast.AddOption{toast.WithKind(f.kind)}
	switch {
	case f.sticky:
		opts = append(opts, toast.Sticky())
	case f.hasDuration:
		opts = append(opts, toast.WithDuration(toast.DurationFromMillis(f.durationMs)))
	}
	return opts
}

func (f toastForm) envelope(session string) toast.Envelope {
	return toast.Envelope{
		SessionID:  session,
		Message:    f.message,
		Kind:       f.kind,
		DurationMs: f.durationMs,
		Sticky:     f.sticky || (f.hasDuration && f.durationMs == 0),
	}
}

func formBool(v string) bool {
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// redirectBack sends the client to the same-host referer, or "/".
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host && ref.Path != "" {
		target = ref.RequestURI()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
