package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/framegraph"
	"github.com/aretw0/framegraph/internal/testutils"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/aretw0/framegraph/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const edgeJSON = `{
  "header": {"frame_id": "map"},
  "child_frame_id": "odom",
  "transform": {
    "translation": {"x": 1, "y": 0, "z": 0},
    "rotation": {"x": 0, "y": 0, "z": 0, "w": 1}
  }
}`

func newGraph(t *testing.T) *framegraph.Graph {
	t.Helper()
	g := framegraph.New()
	t.Cleanup(g.Dispose)

	testutils.SeedChain(t, g)
	return g
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(newGraph(t))

	w := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	assert.Contains(t, w.Body.String(), framegraph.Version)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestResolve(t *testing.T) {
	h := NewHandler(newGraph(t))

	w := do(t, h, "GET", "/resolve?source=map&target=base_link&convention=source", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TransformResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "source", resp.Convention)
	assert.True(t, resp.Translation.ApproxEqual(geom.Vec3{X: 1, Y: 1}, 1e-9))

	w = do(t, h, "GET", "/resolve?source=map&target=base_link", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "target", resp.Convention)
	assert.True(t, resp.Translation.ApproxEqual(geom.Vec3{X: 1, Z: -1}, 1e-9))
}

func TestResolve_Errors(t *testing.T) {
	h := NewHandler(newGraph(t))

	tests := []struct {
		target string
		code   int
		reason string
	}{
		{"/resolve?source=map", http.StatusBadRequest, "invalid_request"},
		{"/resolve?source=map&target=", http.StatusBadRequest, "invalid_request"},
		{"/resolve?source=map&target=ghost", http.StatusNotFound, "unknown_frame"},
		{"/resolve?source=map&target=odom&convention=sideways", http.StatusBadRequest, "invalid_request"},
	}
	for _, tt := range tests {
		w := do(t, h, "GET", tt.target, "")
		assert.Equal(t, tt.code, w.Code, tt.target)

		var body errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), tt.target)
		assert.NotEmpty(t, body.Error, tt.target)
		assert.Equal(t, tt.reason, body.Reason, tt.target)
	}
}

func TestOpenAPISpec(t *testing.T) {
	h := NewHandler(newGraph(t))

	w := do(t, h, "GET", "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Framegraph API", doc.Info.Title)
	for _, path := range []string{"/health", "/info", "/stats", "/frames", "/frames/{name}", "/tree", "/resolve", "/path", "/edges", "/events"} {
		assert.NotNil(t, doc.Paths.Value(path), path)
	}
}

func TestRequestValidation(t *testing.T) {
	h := NewHandler(newGraph(t))

	tests := []struct {
		method, target string
	}{
		{"GET", "/path?source=map"},
		{"GET", "/path?target=map"},
		{"POST", "/edges?classification=forever"},
		{"GET", "/resolve?source=map&target=odom&convention=SOURCE"},
	}
	for _, tt := range tests {
		w := do(t, h, tt.method, tt.target, edgeJSON)
		require.Equal(t, http.StatusBadRequest, w.Code, tt.target)

		var body errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), tt.target)
		assert.Equal(t, "invalid_request", body.Reason, tt.target)
		assert.NotEmpty(t, body.Error, tt.target)
	}

	// Routes outside the document are left to the router.
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/nowhere", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, "DELETE", "/frames", "").Code)
}

func TestFramesAndPath(t *testing.T) {
	h := NewHandler(newGraph(t))

	w := do(t, h, "GET", "/frames", "")
	assert.JSONEq(t, `["base_link","map","odom"]`, w.Body.String())

	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/frames/odom", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/frames/ghost", "").Code)

	w = do(t, h, "GET", "/path?source=base_link&target=map", "")
	assert.JSONEq(t, `{"path":["base_link","odom","map"]}`, w.Body.String())
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/path?source=map&target=ghost", "").Code)
}

func TestTree(t *testing.T) {
	h := NewHandler(newGraph(t))

	w := do(t, h, "GET", "/tree?expiry=1s", "")
	require.Equal(t, http.StatusOK, w.Code)

	var roots []domain.TreeNode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roots))
	require.Len(t, roots, 1)
	assert.Equal(t, "map", roots[0].Name)
	n, ok := domain.Find(roots, "base_link")
	require.True(t, ok)
	assert.Equal(t, "odom", n.Parent)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/tree?expiry=soon", "").Code)
}

func TestPostEdges(t *testing.T) {
	g := framegraph.New()
	defer g.Dispose()
	h := NewHandler(g)

	w := do(t, h, "POST", "/edges?classification=static", edgeJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"accepted":1,"rejected":0}`, w.Body.String())

	e, ok := g.Store().Edge("map", "odom")
	require.True(t, ok)
	assert.Equal(t, domain.Durable, e.Classification)

	batch := `{"transforms":[` + edgeJSON + `,{"header":{"frame_id":"odom"},"child_frame_id":"x"}]}`
	w = do(t, h, "POST", "/edges", batch)
	require.Equal(t, http.StatusOK, w.Code)
	var resp IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Accepted)
	assert.Equal(t, 1, resp.Rejected)
	assert.Len(t, resp.Errors, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/edges", "nope").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/edges?classification=forever", edgeJSON).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		do(t, h, "POST", "/edges", `{"header":{"frame_id":"a"},"child_frame_id":"a"}`).Code)
}

func TestPostEdges_BodyLimit(t *testing.T) {
	g := framegraph.New()
	defer g.Dispose()
	h := NewHandler(g, WithMaxBodyBytes(16))

	w := do(t, h, "POST", "/edges", edgeJSON)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, g.ListFrames())
}

func TestMetricsMounted(t *testing.T) {
	m := observability.NewMetrics()
	g := framegraph.New(framegraph.WithHooks(m.Hooks()))
	defer g.Dispose()
	m.RegisterStats(g.Stats)

	h := NewHandler(g, WithMetrics(m.Handler()))
	do(t, h, "POST", "/edges?classification=durable", edgeJSON)

	w := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `framegraph_edges_upserted_total{classification="durable",created="true"} 1`)
	assert.Contains(t, w.Body.String(), "framegraph_frames 2")

	assert.Equal(t, http.StatusNotFound, do(t, NewHandler(g), "GET", "/metrics", "").Code)
}

func TestSubscribeEvents(t *testing.T) {
	g := framegraph.New()
	defer g.Dispose()
	srv := httptest.NewServer(NewHandler(g))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	readEvent := func() []string {
		var lines []string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			if line == "" {
				return lines
			}
			lines = append(lines, line)
		}
	}

	assert.Equal(t, []string{"event: ping", "data: connected"}, readEvent())

	// The watcher is registered before the ping is written.
	q := geom.IdentityQuat()
	v := geom.Vec3{X: 1}
	require.NoError(t, g.UpsertEdge(domain.EdgeUpdate{
		Parent: "map", Child: "odom",
		Translation: &v, Rotation: &q,
		Classification: domain.Expiring,
	}))

	ev := readEvent()
	require.Len(t, ev, 3)
	assert.Equal(t, "id: 1", ev[0])
	assert.Equal(t, "event: changed", ev[1])
	assert.Contains(t, ev[2], `"seq":1`)
}
