package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tensionlab/pkg/storage"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T, backend storage.Backend) (*Server, *client) {
	t.Helper()
	return newTestServerWith(t, Options{Backend: backend})
}

func newTestServerWith(t *testing.T, opts Options) (*Server, *client) {
	t.Helper()
	srv := New(opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &client{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

func (c *client) get(path string) *http.Response {
	c.t.Helper()
	resp, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *client) post(path, body string) *http.Response {
	c.t.Helper()
	resp, err := c.http.Post(c.base+path, "application/json", strings.NewReader(body))
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeDiagram(t *testing.T, resp *http.Response) diagramResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var d diagramResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	return d
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, nil)
	resp := c.get("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "version")
}

func TestLoadDefaults(t *testing.T) {
	srv, c := newTestServer(t, nil)
	d := decodeDiagram(t, c.get("/api/diagram"))

	assert.Equal(t, "defaults", d.Source)
	assert.NotEmpty(t, d.Session)
	assert.Equal(t, 50.0, d.State["fm"])
	assert.InDelta(t, 25*math.Sqrt2, float64(d.Result.TensionA), 1e-9)
	assert.InDelta(t, 25*math.Sqrt2, float64(d.Result.TensionB), 1e-9)
	assert.False(t, d.Result.Degenerate)
	assert.Len(t, d.Labels, 4)
	assert.Equal(t, "P0", d.Labels[0].Point)
	assert.Empty(t, d.Query)
	assert.Equal(t, 1, srv.Sessions())

	var names []string
	for _, l := range d.Readout {
		names = append(names, l.Name)
	}
	assert.Contains(t, names, "Net torque")
}

func TestLoadFromQuery(t *testing.T) {
	_, c := newTestServer(t, nil)
	q := "p0x=0&p0y=10&p1x=-10&p1y=0&p2x=10&p2y=0&p3x=0&p3y=-10&fm=10&fd=270"
	d := decodeDiagram(t, c.get("/api/diagram?"+q))

	assert.Equal(t, "url", d.Source)
	assert.Equal(t, 270.0, d.State["fd"])
	assert.InDelta(t, 10/math.Sqrt2, float64(d.Result.TensionA), 1e-9)
	assert.InDelta(t, 0, float64(d.Result.NetTorque), 1e-9)
}

func TestLoadMalformedQueryFallsBack(t *testing.T) {
	_, c := newTestServer(t, nil)
	d := decodeDiagram(t, c.get("/api/diagram?p0x=abc"))
	assert.Equal(t, "defaults", d.Source)
}

func TestControlPersistsAcrossLoads(t *testing.T) {
	_, c := newTestServer(t, storage.NewMemoryBackend())
	decodeDiagram(t, c.get("/api/diagram"))

	d := decodeDiagram(t, c.post("/api/diagram/control", `{"kind":"magnitude","value":"75"}`))
	assert.Equal(t, "written", d.Saved)
	assert.Equal(t, 75.0, d.State["fm"])
	assert.Contains(t, d.Query, "fm=75")

	d = decodeDiagram(t, c.post("/api/diagram/control", `{"kind":"magnitude","value":"75"}`))
	assert.Equal(t, "skipped", d.Saved)

	// A fresh load without a query picks the stored blob up again.
	d = decodeDiagram(t, c.get("/api/diagram"))
	assert.Equal(t, "storage", d.Source)
	assert.Equal(t, 75.0, d.State["fm"])
}

func TestControlUnparseableValueIsZero(t *testing.T) {
	_, c := newTestServer(t, nil)
	d := decodeDiagram(t, c.post("/api/diagram/control", `{"kind":"direction","value":"north"}`))
	assert.Equal(t, 0.0, d.State["fd"])
}

func TestControlRejectsUnknownKind(t *testing.T) {
	_, c := newTestServer(t, nil)
	resp := c.post("/api/diagram/control", `{"kind":"colour","value":"1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDragCanvasFrame(t *testing.T) {
	_, c := newTestServer(t, nil)
	decodeDiagram(t, c.get("/api/diagram"))

	d := decodeDiagram(t, c.post("/api/diagram/drag", `{"point":"P3","x":250,"y":300,"frame":"canvas"}`))
	assert.Equal(t, 0.0, d.State["p3x"])
	assert.Equal(t, -100.0, d.State["p3y"])
	assert.Equal(t, "written", d.Saved)
	assert.Equal(t, uint64(1), d.Revision)
}

func TestDragRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"point":`},
		{"unknown point", `{"point":"P9","x":1,"y":1}`},
		{"missing y", `{"point":"P1","x":1}`},
		{"bad frame", `{"point":"P1","x":1,"y":1,"frame":"screen"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestServer(t, nil)
			resp := c.post("/api/diagram/drag", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var e Error
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.NotEmpty(t, e.Code)
		})
	}
}

func TestHit(t *testing.T) {
	_, c := newTestServer(t, nil)
	decodeDiagram(t, c.get("/api/diagram"))

	var body map[string]any
	resp := c.get("/api/diagram/hit?x=252&y=251&frame=canvas")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["hit"])
	assert.Equal(t, "P3", body["point"])

	body = nil
	resp = c.get("/api/diagram/hit?x=0&y=0")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["hit"])
	assert.NotContains(t, body, "point")

	resp = c.get("/api/diagram/hit?x=left&y=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReset(t *testing.T) {
	backend := storage.NewMemoryBackend()
	_, c := newTestServer(t, backend)
	decodeDiagram(t, c.post("/api/diagram/control", `{"kind":"magnitude","value":"5"}`))
	require.Equal(t, 1, backend.Len())

	d := decodeDiagram(t, c.post("/api/diagram/reset", ""))
	assert.Equal(t, 50.0, d.State["fm"])
	assert.Empty(t, d.Query)
	assert.Equal(t, 0, backend.Len())
}

func TestRender(t *testing.T) {
	_, c := newTestServer(t, nil)
	decodeDiagram(t, c.get("/api/diagram"))

	resp := c.get("/api/diagram/render.svg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("<svg")))

	resp = c.get("/api/diagram/render.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 500, img.Bounds().Dx())

	resp = c.get("/api/diagram/render.dot")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "graph")

	resp = c.get("/api/diagram/render.gif")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv, a := newTestServer(t, nil)
	decodeDiagram(t, a.post("/api/diagram/control", `{"kind":"magnitude","value":"99"}`))

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	b := &client{t: t, base: a.base, http: &http.Client{Jar: jar}}
	d := decodeDiagram(t, b.get("/api/diagram"))

	assert.Equal(t, 50.0, d.State["fm"])
	assert.Equal(t, 2, srv.Sessions())
}

func TestReadOnlyRoutesWithoutCookie(t *testing.T) {
	srv, c := newTestServer(t, nil)
	anon := &client{t: t, base: c.base, http: &http.Client{}}

	for i := 0; i < 100; i++ {
		resp := anon.get("/api/diagram/hit?x=250&y=250&frame=canvas")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Values("Set-Cookie"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "P3", body["point"])

		resp = anon.get("/api/diagram/render.dot")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 0, srv.Sessions())
}

func TestRegistryIsBounded(t *testing.T) {
	srv, owner := newTestServerWith(t, Options{MaxSessions: 3})
	// Called under the registry lock, so the counter needs no sync.
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	srv.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	decodeDiagram(t, owner.post("/api/diagram/control", `{"kind":"magnitude","value":"77"}`))

	anon := &client{t: t, base: owner.base, http: &http.Client{}}
	for i := 0; i < 50; i++ {
		decodeDiagram(t, anon.post("/api/diagram/control", `{"kind":"direction","value":"10"}`))
		assert.LessOrEqual(t, srv.Sessions(), 3)
	}
	assert.Equal(t, 3, srv.Sessions())

	// The owner's session was evicted; its state comes back from storage.
	d := decodeDiagram(t, owner.post("/api/diagram/control", `{"kind":"direction","value":"0"}`))
	assert.Equal(t, "storage", d.Source)
	assert.Equal(t, 77.0, d.State["fm"])
}

func TestIdleSessionsExpire(t *testing.T) {
	srv := New(Options{IdleTimeout: time.Minute})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return now }
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		e, err := srv.lookup(ctx, id)
		require.NoError(t, err)
		e.mu.Unlock()
	}
	assert.Equal(t, 2, srv.Sessions())

	now = now.Add(2 * time.Minute)
	e, err := srv.lookup(ctx, "c")
	require.NoError(t, err)
	e.mu.Unlock()
	assert.Equal(t, 1, srv.Sessions())
}

func TestConcurrentLookupSharesSession(t *testing.T) {
	srv := New(Options{})
	ctx := context.Background()

	const n = 20
	got := make([]*entry, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := srv.lookup(ctx, "shared")
			if err != nil {
				t.Error(err)
				return
			}
			got[i] = e
			e.mu.Unlock()
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, got[0], got[i])
	}
	assert.Equal(t, 1, srv.Sessions())
}

func TestNumberMarshalsNonFiniteAsNull(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
		{1.5, "1.5"},
		{-0.25, "-0.25"},
	}
	for _, tt := range tests {
		got, err := json.Marshal(number(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}
