package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grammy "github.com/gabelluardo/grammY"
	"github.com/gabelluardo/grammY/internal/adapters/httpapi"
	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
	"github.com/gabelluardo/grammY/pkg/scene"
)

type collector struct {
	sent []string
}

func (c *collector) Send(_ context.Context, key, text string) error {
	c.sent = append(c.sent, key+": "+text)
	return nil
}

func newTestHandler(t *testing.T) (http.Handler, *collector) {
	t.Helper()
	sink := &collector{}

	greeter := scene.New("greeter", func(b *scene.Builder) {
		b.Step("ask", func(ctx *composer.Context, next composer.Next) error {
			return ctx.Reply("What is your name?")
		})
		b.Wait("answer").On(domain.KindMessage, func(ctx *composer.Context, next composer.Next) error {
			ctx.Session.Data["name"] = ctx.Update.Text
			return next()
		})
		b.Step("greet", func(ctx *composer.Context, next composer.Next) error {
			name, _ := ctx.Session.Data["name"].(string)
			return ctx.Reply("Hello, " + name + "!")
		})
	})

	bot, err := grammy.New(grammy.WithScenes(greeter), grammy.WithSink(sink))
	require.NoError(t, err)

	return httpapi.NewHandler(bot), sink
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEnterAndResumeOverHTTP(t *testing.T) {
	h, sink := newTestHandler(t)

	rec := do(h, http.MethodPost, "/sessions/chat-1/scenes/greeter", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// The session now carries the suspended trace.
	rec = do(h, http.MethodGet, "/sessions/chat-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sess domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.NotNil(t, sess.Scenes)
	assert.Equal(t, "greeter", sess.Scenes.Scene)

	// A message update resumes and completes the scene.
	rec = do(h, http.MethodPost, "/updates", `{"key":"chat-1","kind":"message","text":"Ada"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{
		"chat-1: What is your name?",
		"chat-1: Hello, Ada!",
	}, sink.sent)

	rec = do(h, http.MethodGet, "/sessions/chat-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Nil(t, sess.Scenes)
}

func TestEnterConflicts(t *testing.T) {
	h, _ := newTestHandler(t)

	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/sessions/chat-1/scenes/greeter", "").Code)
	assert.Equal(t, http.StatusConflict, do(h, http.MethodPost, "/sessions/chat-1/scenes/greeter", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/sessions/chat-2/scenes/ghost", "").Code)
}

func TestUpdateValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/updates", "{not json").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/updates", `{"kind":"message","text":"no key"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/updates", `{"key":"k","kind":"telepathy"}`).Code)
}

func TestSessionLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/sessions/ghost", "").Code)

	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/updates", `{"key":"chat-1","kind":"message","text":"hi"}`).Code)

	rec := do(h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Keys  []string `json:"keys"`
		Count int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Count)
	assert.Contains(t, listing.Keys, "chat-1")

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/sessions/chat-1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/sessions/chat-1", "").Code)
}

func TestSceneIntrospection(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(h, http.MethodGet, "/scenes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "greeter")

	rec = do(h, http.MethodGet, "/scenes/greeter", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scene greeter")
	assert.Contains(t, rec.Body.String(), "wait  answer")

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/scenes/ghost", "").Code)
}

func TestRequestID(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(h, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	// An inbound id is passed through instead of being replaced.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "proxy-7")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "proxy-7", rec.Header().Get("X-Request-Id"))
}

func TestMetricsMount(t *testing.T) {
	sink := &collector{}
	bot, err := grammy.New(grammy.WithSink(sink))
	require.NoError(t, err)

	stub := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := httpapi.NewHandler(bot, httpapi.WithMetricsHandler(stub))

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/metrics", "").Code)
}
