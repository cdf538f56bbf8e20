package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/selecttree/pkg/buildinfo"
	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/pipeline"
	"github.com/matzehuels/selecttree/pkg/query"
	"github.com/matzehuels/selecttree/pkg/render"
	"github.com/matzehuels/selecttree/pkg/tree"
)

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// SelectboxRequest is the body of POST /v1/selectbox.
type SelectboxRequest struct {
	Items    []any  `json:"items"`
	MaxDepth int    `json:"max_depth,omitempty"`
	Indent   string `json:"indent,omitempty"`
	// Format defaults to "json".
	Format    string `json:"format,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`
	Translate bool   `json:"translate,omitempty"`
}

// SelectboxResponse is returned for the json format.
type SelectboxResponse struct {
	Lines     tree.Lines `json:"lines"`
	Truncated bool       `json:"truncated"`
	Cached    bool       `json:"cached"`
	RequestID string     `json:"request_id"`
}

// QueryResponse is returned by GET /v1/query.
type QueryResponse struct {
	Query string `json:"query"`
}

var contentTypes = map[string]string{
	render.FormatText: "text/plain; charset=utf-8",
	render.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	render.FormatSVG:  "image/svg+xml",
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Version})
}

// handleSelectbox handles POST /v1/selectbox.
//
// Items are decoded with numbers kept exact, so integer ids stay integers
// and string ids stay strings.
func (s *Server) handleSelectbox(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeSelectbox(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Items == nil {
		req.Items = []any{}
	}

	opts := s.baseOptions(req.MaxDepth, req.Indent, req.Format, req.Translate)
	opts.Items = req.Items
	opts.Detailed = req.Detailed
	s.run(w, r, opts)
}

// handleSQL handles GET /v1/sql?max_depth=&indent=&format=&translate=.
func (s *Server) handleSQL(w http.ResponseWriter, r *http.Request) {
	if s.sql == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeNotFound, "no SQL source configured"))
		return
	}
	q := r.URL.Query()
	depth, err := intParam(q.Get("max_depth"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.baseOptions(depth, q.Get("indent"), q.Get("format"), q.Get("translate") == "true")
	opts.Source = s.sql
	opts.Refresh = q.Get("refresh") == "true"
	s.run(w, r, opts)
}

// handleQuery handles GET /v1/query?table=&id=&name=&parent=&order=&where=.
// Identifiers must be plain names; where clauses are passed through.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	table := q.Get("table")
	opts := query.Options{
		IDColumn:     q.Get("id"),
		NameColumn:   q.Get("name"),
		ParentColumn: q.Get("parent"),
		OrderBy:      q.Get("order"),
		Wheres:       q["where"],
	}
	if table == "" {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "table is required"))
		return
	}
	if err := opts.Validate(table); err != nil {
		s.writeError(w, r, err)
		return
	}
	stmt, err := query.Build(table, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Query: stmt})
}

func (s *Server) decodeSelectbox(w http.ResponseWriter, r *http.Request) (*SelectboxRequest, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	var req SelectboxRequest
	if err := dec.Decode(&req); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "invalid request body")
	}
	return &req, nil
}

// baseOptions merges request settings over the configured defaults.
func (s *Server) baseOptions(depth int, indent, format string, translate bool) pipeline.Options {
	opts := pipeline.Options{
		MaxDepth: s.cfg.MaxDepth,
		Indent:   s.cfg.Indent,
		Format:   render.FormatJSON,
	}
	if depth != 0 {
		opts.MaxDepth = depth
	}
	if indent != "" {
		opts.Indent = indent
	}
	if format != "" {
		opts.Format = format
	}
	if translate && s.normalizer != nil {
		opts.Normalizer = s.normalizer
		opts.NormalizerKey = s.normalizerKey
	}
	return opts
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if res.Truncated {
		w.Header().Set("X-Selecttree-Truncated", "true")
	}
	if opts.Format == render.FormatJSON {
		writeJSON(w, http.StatusOK, SelectboxResponse{
			Lines:     res.Lines,
			Truncated: res.Truncated,
			Cached:    res.CacheInfo.ResultHit,
			RequestID: requestIDFrom(r.Context()),
		})
		return
	}
	w.Header().Set("Content-Type", contentTypes[opts.Format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Output)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid integer %q", v)
	}
	return n, nil
}
