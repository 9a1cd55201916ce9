package statusapi

import (
	"strings"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/openregatta/timing-sync/internal/usecase"
)

type fakeSource struct {
	status usecase.PollerStatus
}

func (f *fakeSource) Status() usecase.PollerStatus {
	return f.status
}

func makeRequestCtx(method, uri string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	return ctx
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", &fakeSource{}, nil)

	ctx := makeRequestCtx(fasthttp.MethodGet, "/healthz")
	srv.handle(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("unexpected status code %d", ctx.Response.StatusCode())
	}
	if got := string(ctx.Response.Body()); got != "ok" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestServer_Status(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", &fakeSource{status: usecase.PollerStatus{
		EventID: "60",
		Ticks:   3,
		Syncs:   1,
		Skips:   2,
	}}, nil)

	ctx := makeRequestCtx(fasthttp.MethodGet, "/status")
	srv.handle(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("unexpected status code %d", ctx.Response.StatusCode())
	}
	if ct := string(ctx.Response.Header.ContentType()); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := string(ctx.Response.Body())
	for _, want := range []string{`"event_id":"60"`, `"ticks":3`, `"syncs":1`, `"skips":2`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %s: %s", want, body)
		}
	}
}

func TestServer_UnknownPath(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", &fakeSource{}, nil)

	ctx := makeRequestCtx(fasthttp.MethodGet, "/nope")
	srv.handle(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("unexpected status code %d", ctx.Response.StatusCode())
	}
}

func TestServer_RejectsNonGet(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", &fakeSource{}, nil)

	ctx := makeRequestCtx(fasthttp.MethodPost, "/status")
	srv.handle(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusMethodNotAllowed {
		t.Fatalf("unexpected status code %d", ctx.Response.StatusCode())
	}
}
