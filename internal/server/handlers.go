package server

import (
	"encoding/json"
	"net/http"

	"github.com/formscout/formscout/internal/pipeline"
	"github.com/formscout/formscout/internal/scan"
)

// ScanRequest represents the request body for /api/scan. File paths are
// deliberately not accepted here; an HTTP caller must not read server-local
// files.
type ScanRequest struct {
	URL          string `json:"url,omitempty"`
	HTML         string `json:"html,omitempty"`
	Browser      bool   `json:"browser,omitempty"`
	ForceExtract bool   `json:"force_extract,omitempty"`
}

// FillRequest represents the request body for /api/fill.
type FillRequest struct {
	Generation uint64   `json:"generation"`
	Index      int      `json:"index"`
	Value      string   `json:"value,omitempty"`
	Values     []string `json:"values,omitempty"`
}

// FillResponse represents the response for /api/fill.
type FillResponse struct {
	FieldIndex int    `json:"field_index"`
	Success    bool   `json:"success"`
	Value      string `json:"value,omitempty"`
}

// QuickFillRequest represents the request body for /api/quickfill.
type QuickFillRequest struct {
	Generation uint64 `json:"generation"`
	Smart      bool   `json:"smart,omitempty"`
}

// QuickFillResponse represents the response for /api/quickfill.
type QuickFillResponse struct {
	Generation uint64                 `json:"generation"`
	Results    []pipeline.FillOutcome `json:"results"`
}

// FieldsResponse represents the response for /api/fields. Generation zero
// means no scan has run yet.
type FieldsResponse struct {
	Generation uint64         `json:"generation"`
	Fields     []scan.Summary `json:"fields"`
}

// handleScan scans a page and replaces the session's field list.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.URL == "" && req.HTML == "" {
		s.errorResponse(w, http.StatusBadRequest, "Either url or html is required")
		return
	}

	src := pipeline.Source{URL: req.URL, HTML: req.HTML}
	opts := pipeline.Options{
		UseBrowser:   req.Browser || s.useBrowser,
		ForceExtract: req.ForceExtract,
		Fetcher:      s.fetcher,
		Verbose:      s.verbose,
		OnProgress:   s.hub.broadcast,
	}

	s.opMu.Lock()
	outcome, err := pipeline.Scan(r.Context(), s.session, src, opts)
	s.opMu.Unlock()
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Scan failed: "+err.Error())
		return
	}

	text := ""
	if outcome.JobDescription != nil {
		text = outcome.JobDescription.Text
	}
	s.setJobDescription(text)

	s.jsonResponse(w, http.StatusOK, outcome)
}

// handleFields returns the current field list snapshot.
func (s *Server) handleFields(w http.ResponseWriter, _ *http.Request) {
	s.opMu.Lock()
	gen, fields := s.session.Summaries()
	s.opMu.Unlock()

	s.jsonResponse(w, http.StatusOK, FieldsResponse{Generation: gen, Fields: fields})
}

// handleFill writes one value into one field, addressed by generation and
// index. A reference into a superseded scan is rejected, not remapped.
func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	var req FillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	values := req.Values
	if len(values) == 0 && req.Value != "" {
		values = []string{req.Value}
	}
	if len(values) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "value or values is required")
		return
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	field, err := s.session.Resolve(scan.Ref{Generation: req.Generation, Index: req.Index})
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	ok := s.engine.FillMulti(field, values)
	resp := FillResponse{FieldIndex: req.Index, Success: ok}
	if ok {
		resp.Value = values[0]
	}
	s.hub.broadcast(pipeline.ProgressEvent{Step: "fill", Message: field.Label, Content: resp})
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleQuickFill fills every profile-backed field of one generation. smart
// additionally drafts answers for uncovered questions when the server has an
// LLM client.
func (s *Server) handleQuickFill(w http.ResponseWriter, r *http.Request) {
	var req QuickFillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filler := &pipeline.Filler{
		Session:        s.session,
		Profile:        s.profile,
		Engine:         s.engine,
		JobDescription: s.getJobDescription(),
		Verbose:        s.verbose,
		OnProgress:     s.hub.broadcast,
	}
	if req.Smart {
		filler.Composer = s.composer
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	var outs []pipeline.FillOutcome
	var err error
	if req.Smart {
		outs, err = filler.SmartFill(r.Context(), req.Generation)
	} else {
		outs, err = filler.QuickFill(req.Generation)
	}
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, QuickFillResponse{Generation: req.Generation, Results: outs})
}
