package toastui_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/toastkit/pkg/broadcast"
	"github.com/dmitrymomot/toastkit/pkg/logger"
	"github.com/dmitrymomot/toastkit/pkg/toast"
	"github.com/dmitrymomot/toastkit/pkg/toastui"
)

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

// newManager returns a manager whose timers never fire.
func newManager() *toast.Manager {
	return toast.New(
		toast.WithScheduler(toast.SchedulerFunc(func(time.Duration, func()) toast.Timer { return noopTimer{} })),
		toast.WithLogger(logger.Discard()),
	)
}

func newRouter(m *toast.Manager) http.Handler {
	h := toastui.NewHandler(toastui.WithLogger(logger.Discard()))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(toast.WithContext(r.Context(), m)))
		})
	})
	r.Get("/", h.Page)
	r.Mount(h.BasePath(), h.Routes())
	return r
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandlerPage(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.Info("welcome")

	rec := httptest.NewRecorder()
	newRouter(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "welcome")
	assert.Contains(t, rec.Body.String(), `data-init="@get('/toasts/stream')"`)
}

func TestHandlerContainer(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.Success("saved")
	router := newRouter(m)

	t.Run("plain html", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/toasts", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), `<div id="toast-container"`))
		assert.Contains(t, rec.Body.String(), "saved")
	})

	t.Run("datastar patch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/toasts", nil)
		req.Header.Set("Accept", "text/event-stream")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
		assert.Contains(t, rec.Body.String(), "datastar-patch-elements")
		assert.Contains(t, rec.Body.String(), "#toast-container")
		assert.Contains(t, rec.Body.String(), "saved")
	})
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()

	t.Run("plain form redirects back", func(t *testing.T) {
		m := newManager()
		req := postForm("/toasts", url.Values{"message": {"hello"}, "kind": {"warning"}, "duration_ms": {"1500"}})
		req.Header.Set("Referer", "http://example.com/app?tab=1")
		rec := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/app?tab=1", rec.Header().Get("Location"))
		list := m.List()
		require.Len(t, list, 1)
		assert.Equal(t, "hello", list[0].Message)
		assert.Equal(t, toast.KindWarning, list[0].Kind)
		assert.Equal(t, 1500*time.Millisecond, list[0].Duration)
	})

	t.Run("foreign referer redirects to root", func(t *testing.T) {
		m := newManager()
		req := postForm("/toasts", url.Values{"message": {"hello"}})
		req.Header.Set("Referer", "https://evil.test/phish")
		rec := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("defaults and sticky", func(t *testing.T) {
		m := newManager()
		rec := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rec, postForm("/toasts", url.Values{"message": {"pinned"}, "kind": {"bogus"}, "sticky": {"on"}}))

		require.Equal(t, http.StatusSeeOther, rec.Code)
		list := m.List()
		require.Len(t, list, 1)
		assert.Equal(t, toast.KindInfo, list[0].Kind)
		assert.True(t, list[0].Sticky())
	})

	t.Run("invalid duration", func(t *testing.T) {
		for _, raw := range []string{"abc", "-5"} {
			m := newManager()
			rec := httptest.NewRecorder()
			newRouter(m).ServeHTTP(rec, postForm("/toasts", url.Values{"message": {"x"}, "duration_ms": {raw}}))

			assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
			assert.Equal(t, 0, m.Len(), raw)
		}
	})

	t.Run("htmx gets the container", func(t *testing.T) {
		m := newManager()
		req := postForm("/toasts", url.Values{"message": {"fragment"}})
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `id="toast-container"`)
		assert.Contains(t, rec.Body.String(), "fragment")
	})
}

func TestHandlerDismiss(t *testing.T) {
	t.Parallel()

	t.Run("delete without datastar", func(t *testing.T) {
		m := newManager()
		id := m.Error("broken")
		keep := m.Info("keep")

		rec := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/toasts/"+id, nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		list := m.List()
		require.Len(t, list, 1)
		assert.Equal(t, keep, list[0].ID)
	})

	t.Run("delete via datastar patches container", func(t *testing.T) {
		m := newManager()
		id := m.Error("broken")

		req := httptest.NewRequest(http.MethodDelete, "/toasts/"+id, nil)
		req.Header.Set("Accept", "text/event-stream")
		rec := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rec, req)

		assert.Equal(t, 0, m.Len())
		assert.Contains(t, rec.Body.String(), "datastar-patch-elements")
		assert.NotContains(t, rec.Body.String(), "broken")
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		m := newManager()
		m.Info("stays")

		rec := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/toasts/missing", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("form dismiss redirects", func(t *testing.T) {
		m := newManager()
		id := m.Info("bye")

		rec := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/toasts/"+id+"/dismiss", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, 0, m.Len())
	})
}

func TestHandlerWithoutManagerPanics(t *testing.T) {
	t.Parallel()

	h := toastui.NewHandler(toastui.WithLogger(logger.Discard()))
	assert.PanicsWithError(t, toast.ErrNoManager.Error(), func() {
		h.Container(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/toasts", nil))
	})
}

func TestHandlerStream(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.Info("initial")
	srv := httptest.NewServer(newRouter(m))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/toasts/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	waitFor := func(substr string) bool {
		for scanner.Scan() {
			if strings.Contains(scanner.Text(), substr) {
				return true
			}
		}
		return false
	}

	require.True(t, waitFor("initial"), "initial render")

	m.Success("pushed")
	require.True(t, waitFor("pushed"), "patch after add")

	// Closing the queue ends the stream.
	require.NoError(t, m.Close())
	for scanner.Scan() {
	}
	assert.NoError(t, scanner.Err())
}

func TestHandlerStreamSurvivesBurst(t *testing.T) {
	t.Parallel()

	m := newManager()
	srv := httptest.NewServer(newRouter(m))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/toasts/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	waitFor := func(substr string) bool {
		for scanner.Scan() {
			if strings.Contains(scanner.Text(), substr) {
				return true
			}
		}
		return false
	}
	require.True(t, waitFor(toastui.ContainerID), "initial render")

	for range 40 {
		m.Info("burst")
	}
	m.Clear()
	m.Success("after-burst")

	assert.True(t, waitFor("after-burst"), "stream ended during the burst")
}

func TestHandlerCreateHugeDuration(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"18446744073710", "9223372036854775807"} {
		m := newManager()
		rec := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rec, postForm("/toasts", url.Values{"message": {"x"}, "duration_ms": {raw}}))

		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
		assert.Equal(t, 0, m.Len(), raw)
	}

	m := newManager()
	rec := httptest.NewRecorder()
	largest := strconv.FormatInt(toast.MaxDurationMillis, 10)
	newRouter(m).ServeHTTP(rec, postForm("/toasts", url.Values{"message": {"x"}, "duration_ms": {largest}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, time.Duration(toast.MaxDurationMillis)*time.Millisecond, list[0].Duration)
}

func TestHandlerDismissEscapedID(t *testing.T) {
	t.Parallel()

	m := toast.New(
		toast.WithScheduler(toast.SchedulerFunc(func(time.Duration, func()) toast.Timer { return noopTimer{} })),
		toast.WithLogger(logger.Discard()),
		toast.WithIDGenerator(func() string { return "a'b/c" }),
	)
	id := m.Info("odd id")
	require.Equal(t, "a'b/c", id)

	rec := httptest.NewRecorder()
	newRouter(m).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/toasts/"+url.PathEscape(id), nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, m.Len())
}

// newRelayRouter serves the routes behind toast.Middleware with a registry
// that relays pushes through an in-memory broadcaster.
func newRelayRouter(t *testing.T) (http.Handler, *toast.Registry) {
	t.Helper()

	relay := broadcast.NewMemoryBroadcaster[toast.Envelope](16)
	reg := toast.NewRegistry(
		toast.WithRelay(relay),
		toast.WithRegistryLogger(logger.Discard()),
		toast.WithManagerOptions(
			toast.WithScheduler(toast.SchedulerFunc(func(time.Duration, func()) toast.Timer { return noopTimer{} })),
		),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = reg.Listen(ctx)
	}()
	require.Eventually(t, func() bool { return relay.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	t.Cleanup(func() {
		cancel()
		<-done
		_ = reg.Close()
		_ = relay.Close()
	})

	h := toastui.NewHandler(toastui.WithLogger(logger.Discard()), toastui.WithPusher(reg))
	r := chi.NewRouter()
	r.Use(toast.Middleware(reg))
	r.Mount(h.BasePath(), h.Routes())
	return r, reg
}

func TestHandlerCreatePush(t *testing.T) {
	t.Parallel()

	t.Run("to another session", func(t *testing.T) {
		t.Parallel()
		router, reg := newRelayRouter(t)

		target := uuid.NewString()
		m := reg.Get(target)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, postForm("/toasts", url.Values{
			"message": {"relayed"}, "kind": {"success"}, "session": {target}, "duration_ms": {"0"},
		}))
		require.Equal(t, http.StatusSeeOther, rec.Code)

		require.Eventually(t, func() bool { return m.Len() == 1 }, time.Second, 5*time.Millisecond)
		got := m.List()[0]
		assert.Equal(t, "relayed", got.Message)
		assert.Equal(t, toast.KindSuccess, got.Kind)
		assert.True(t, got.Sticky())
	})

	t.Run("to own session via relay", func(t *testing.T) {
		t.Parallel()
		router, reg := newRelayRouter(t)

		own := uuid.NewString()
		m := reg.Get(own)

		req := postForm("/toasts", url.Values{"message": {"mine"}, "relay": {"on"}, "duration_ms": {"1500"}})
		req.AddCookie(&http.Cookie{Name: toast.DefaultCookieName, Value: own})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		require.Eventually(t, func() bool { return m.Len() == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, 1500*time.Millisecond, m.List()[0].Duration)
	})

	t.Run("without pusher", func(t *testing.T) {
		t.Parallel()
		m := newManager()
		rec := httptest.NewRecorder()
		newRouter(m).ServeHTTP(rec, postForm("/toasts", url.Values{"message": {"x"}, "session": {"elsewhere"}}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), toastui.ErrNoPusher.Error())
		assert.Equal(t, 0, m.Len())
	})
}
