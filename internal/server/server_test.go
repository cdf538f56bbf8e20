package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/selecttree/pkg/cache"
	"github.com/matzehuels/selecttree/pkg/config"
	"github.com/matzehuels/selecttree/pkg/i18n"
	"github.com/matzehuels/selecttree/pkg/observability"
	"github.com/matzehuels/selecttree/pkg/observability/prom"
	"github.com/matzehuels/selecttree/pkg/pipeline"
	"github.com/matzehuels/selecttree/pkg/query"
	"github.com/matzehuels/selecttree/pkg/source"
)

const shopItems = `{"items": [
	{"id": 1, "name": "Phone", "parent_id": null},
	{"id": 2, "name": "iPhone", "parent_id": 1},
	{"id": 3, "name": "Computer", "parent_id": null},
	{"id": "mac", "name": "Mac", "parent_id": 3}
]`

type lineBody struct {
	ID    json.RawMessage `json:"id"`
	Label string          `json:"label"`
}

type selectboxBody struct {
	Lines     []lineBody `json:"lines"`
	Truncated bool       `json:"truncated"`
	Cached    bool       `json:"cached"`
	RequestID string     `json:"request_id"`
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	ts := httptest.NewServer(New(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postSelectbox(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/selectbox", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Version)
}

func TestSelectbox_JSON(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := postSelectbox(t, ts, shopItems+`, "indent": "-"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body selectboxBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	labels := make([]string, len(body.Lines))
	for i, l := range body.Lines {
		labels[i] = l.Label
	}
	assert.Equal(t, []string{"Phone", "-iPhone", "Computer", "-Mac"}, labels)
	assert.JSONEq(t, `1`, string(body.Lines[0].ID))
	assert.JSONEq(t, `"mac"`, string(body.Lines[3].ID))
	assert.False(t, body.Truncated)
	assert.Equal(t, resp.Header.Get(HeaderRequestID), body.RequestID)
	assert.Empty(t, resp.Header.Get("X-Selecttree-Truncated"))
}

func TestSelectbox_Text(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := postSelectbox(t, ts, shopItems+`, "indent": "| ", "format": "text"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Phone\n| iPhone\nComputer\n| Mac\n", string(data))
}

func TestSelectbox_DOT(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := postSelectbox(t, ts, shopItems+`, "format": "dot"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz; charset=utf-8", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")
	assert.Contains(t, string(data), `"i:1" -> "i:2"`)
}

func TestSelectbox_Truncated(t *testing.T) {
	ts := newTestServer(t, Options{})

	body := `{"items": [
		{"id": 1, "name": "a", "parent_id": null},
		{"id": 2, "name": "b", "parent_id": 1},
		{"id": 3, "name": "c", "parent_id": 2}
	], "max_depth": 1}`
	resp := postSelectbox(t, ts, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("X-Selecttree-Truncated"))

	var got selectboxBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.Truncated)
	assert.Len(t, got.Lines, 2)
}

func TestSelectbox_Translate(t *testing.T) {
	tr := i18n.Func("", func(key string) (string, bool) {
		if key == "phones" {
			return "Telefone", true
		}
		return "", false
	})
	ts := newTestServer(t, Options{Normalizer: tr, NormalizerKey: "test"})

	items := `{"items": [{"id": 1, "name": "T:phones", "parent_id": null}]`

	var got selectboxBody
	resp := postSelectbox(t, ts, items+`, "translate": true}`)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Telefone", got.Lines[0].Label)

	resp = postSelectbox(t, ts, items+`}`)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "T:phones", got.Lines[0].Label)
}

func TestSelectbox_ResultCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := pipeline.NewRunner(fc, nil, quietLogger())
	ts := newTestServer(t, Options{Runner: runner})

	var first, second selectboxBody
	require.NoError(t, json.NewDecoder(postSelectbox(t, ts, shopItems+`}`).Body).Decode(&first))
	require.NoError(t, json.NewDecoder(postSelectbox(t, ts, shopItems+`}`).Body).Decode(&second))

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Lines, second.Lines)
}

func TestSelectbox_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"items": [`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown field", `{"rows": []}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"missing key", `{"items": [{"id": 1, "name": "x"}]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"depth above ceiling", `{"items": [], "max_depth": 1001}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown format", `{"items": [], "format": "xml"}`, http.StatusBadRequest, "INVALID_INPUT"},
	}

	ts := newTestServer(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postSelectbox(t, ts, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, resp.Header.Get(HeaderRequestID), body.RequestID)
		})
	}
}

func TestSelectbox_BodyLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 16
	ts := newTestServer(t, Options{Config: cfg})

	resp := postSelectbox(t, ts, shopItems+`}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, resp).Code)
}

func TestEmptyItemsYieldEmptyLines(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := postSelectbox(t, ts, `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lines":[]`)
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, Options{})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))

	resp2, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Len(t, resp2.Header.Get(HeaderRequestID), 36)
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/v2/nothing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

func TestQuery(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/v1/query?table=category&name=title&parent=parent&where=active+%3D+1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body QueryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "SELECT `id`, `title`, `parent` FROM `category` WHERE (active = 1) ORDER BY `title` ASC", body.Query)
}

func TestQuery_Invalid(t *testing.T) {
	ts := newTestServer(t, Options{})

	for _, target := range []string{"/v1/query", "/v1/query?table=bad+table", "/v1/query?table=t&name=x%60--"} {
		resp, err := http.Get(ts.URL + target)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		resp.Body.Close()
	}
}

func seedSQL(t *testing.T) *source.SQL {
	t.Helper()
	ctx := context.Background()
	db, err := source.OpenSQLite(ctx, filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE category (id INTEGER PRIMARY KEY, name TEXT NOT NULL, parent_id INTEGER)`,
		`INSERT INTO category VALUES (1, 'Phone', NULL)`,
		`INSERT INTO category VALUES (2, 'iPhone', 1)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return source.NewSQL(db, "category", query.Options{})
}

func TestSQL(t *testing.T) {
	ts := newTestServer(t, Options{SQL: seedSQL(t)})

	resp, err := http.Get(ts.URL + "/v1/sql?format=text&indent=-")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Phone\n-iPhone\n", string(data))
}

func TestSQL_Errors(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/v1/sql")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	ts = newTestServer(t, Options{SQL: seedSQL(t)})
	resp2, err := http.Get(ts.URL + "/v1/sql?max_depth=deep")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := prometheus.NewRegistry()
	prom.New(reg).Register()

	ts := newTestServer(t, Options{Gatherer: reg})

	resp := postSelectbox(t, ts, shopItems+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	mresp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	require.Equal(t, http.StatusOK, mresp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(mresp.Body)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "selecttree_http_requests_total")
	assert.Contains(t, out, `route="/v1/selectbox"`)
	assert.Contains(t, out, "selecttree_process_lines")
}

func TestMetrics_NotMountedWithoutGatherer(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
