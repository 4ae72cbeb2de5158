package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"contracheques/internal/core"
	applog "contracheques/internal/log"
	"contracheques/internal/render"
	"contracheques/internal/session"
)

type itemDTO struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Total       string `json:"total"`
	Date        string `json:"date"`
	Competency  string `json:"competency"`
	SourcePage  int    `json:"source_page"`
}

type matchDTO struct {
	Description string `json:"description"`
	Accepted    bool   `json:"accepted"`
	Score       int    `json:"score"`
}

type reportRowDTO struct {
	itemDTO
	IsSummaryRow bool   `json:"is_summary_row,omitempty"`
	SummaryKind  string `json:"summary_kind,omitempty"`
}

type skippedTableDTO struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

func toItemDTO(it core.LineItem) itemDTO {
	return itemDTO{
		Code:        it.Code,
		Description: it.Description,
		Total:       it.TotalRaw,
		Date:        it.Date,
		Competency:  it.Competency,
		SourcePage:  it.SourcePage,
	}
}

func toItemDTOs(items []core.LineItem) []itemDTO {
	out := make([]itemDTO, len(items))
	for i, it := range items {
		out[i] = toItemDTO(it)
	}
	return out
}

func toReportDTOs(rows []core.FinalLineItem) []reportRowDTO {
	out := make([]reportRowDTO, len(rows))
	for i, row := range rows {
		out[i] = reportRowDTO{
			itemDTO:      toItemDTO(row.LineItem),
			IsSummaryRow: row.IsSummaryRow,
			SummaryKind:  string(row.SummaryKind),
		}
	}
	return out
}

// handleCreateStatement receives the uploaded PDF, runs extraction and
// normalization and opens a new session holding the statement.
func (s *Server) handleCreateStatement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	stmt, tables, err := s.analyzer.Analyze(r.Context(), data)
	if err != nil {
		if errors.Is(err, core.ErrEmptyStatement) {
			writeError(w, http.StatusUnprocessableEntity, "document yielded no line items")
			return
		}
		slog.ErrorContext(r.Context(), "Analysis failed", "error", err)
		writeError(w, http.StatusBadRequest, "document could not be analyzed")
		return
	}

	sess := session.Session{
		ID:        session.NewID(),
		Statement: stmt,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Put(r.Context(), sess); err != nil {
		slog.ErrorContext(r.Context(), "Failed to store session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store session")
		return
	}

	var skipped []skippedTableDTO
	for _, t := range tables {
		if t.Skipped() {
			skipped = append(skipped, skippedTableDTO{Page: t.Page, Reason: t.Skip.String()})
		}
	}

	slog.InfoContext(r.Context(), "Statement session created",
		"session_id", sess.ID,
		"matricula", stmt.Matricula,
		"item_count", len(stmt.Items))

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":     sess.ID,
		"name":           stmt.Name,
		"matricula":      stmt.Matricula,
		"item_count":     len(stmt.Items),
		"items":          toItemDTOs(stmt.Items),
		"skipped_tables": skipped,
	})
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	resp := map[string]any{
		"session_id": sess.ID,
		"name":       sess.Statement.Name,
		"matricula":  sess.Statement.Matricula,
		"item_count": len(sess.Statement.Items),
		"items":      toItemDTOs(sess.Statement.Items),
		"created_at": sess.CreatedAt,
	}
	if sess.Results != nil {
		resp["threshold"] = sess.Threshold
		resp["matched"] = toItemDTOs(sess.Matched)
	}
	if sess.Report != nil {
		resp["report"] = toReportDTOs(sess.Report)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleFilter matches the statement's deductions against the rubric
// vocabulary and stores the outcome in the session.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Threshold *int `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	threshold := s.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 100 {
		writeError(w, http.StatusUnprocessableEntity, "threshold must be between 0 and 100")
		return
	}

	matched, results := s.analyzer.Filter(sess.Statement, threshold)

	sess.Matched = matched
	sess.Results = results
	sess.Threshold = threshold
	sess.Report = nil // a new filter invalidates any previous report
	if err := s.sessions.Put(r.Context(), sess); err != nil {
		slog.ErrorContext(r.Context(), "Failed to store session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store session")
		return
	}

	matches := make([]matchDTO, len(results))
	for i, res := range results {
		matches[i] = matchDTO{Description: res.Description, Accepted: res.Accepted, Score: res.Score}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"threshold":  threshold,
		"matched":    toItemDTOs(matched),
		"results":    matches,
	})
}

// handleBuildReport confirms the selection, builds the final report
// with the indébito summary and stores it for the download endpoints.
func (s *Server) handleBuildReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if sess.Results == nil {
		writeError(w, http.StatusConflict, "run the filter step before building a report")
		return
	}

	var req struct {
		Descriptions []string `json:"descriptions"`
		Received     string   `json:"received"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := s.analyzer.BuildReport(sess.Matched, req.Descriptions, req.Received)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNothingSelected):
			writeError(w, http.StatusUnprocessableEntity, "no descriptions selected")
		case errors.Is(err, core.ErrUnknownSelection):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Report build failed", "error", err, "session_id", sess.ID)
			writeError(w, http.StatusInternalServerError, "failed to build report")
		}
		return
	}

	sess.Received = req.Received
	sess.Report = report
	if err := s.sessions.Put(r.Context(), sess); err != nil {
		slog.ErrorContext(r.Context(), "Failed to store session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store session")
		return
	}

	s.analyzer.PublishCompleted(r.Context(), sess.ID, sess.Statement, report, sess.Threshold)

	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogReportGenerated(
		r.Context(), sess.ID, sess.Statement.Matricula,
		len(sess.Statement.Items), len(req.Descriptions), sess.Threshold)

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"rows":       toReportDTOs(report),
	})
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.reportSession(w, r)
	if !ok {
		return
	}

	meta := render.ReportMeta{Name: sess.Statement.Name, Matricula: sess.Statement.Matricula}
	data, err := render.FinalReportPDF(sess.Report, meta)
	if err != nil {
		slog.ErrorContext(r.Context(), "PDF rendering failed", "error", err, "session_id", sess.ID)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	serveFile(w, data, "application/pdf",
		render.Filename(render.PrefixFinal, meta.Name, meta.Matricula, "pdf"))
}

func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.reportSession(w, r)
	if !ok {
		return
	}

	meta := render.ReportMeta{Name: sess.Statement.Name, Matricula: sess.Statement.Matricula}
	data, err := render.FinalReportXLSX(sess.Report, meta)
	if err != nil {
		slog.ErrorContext(r.Context(), "XLSX rendering failed", "error", err, "session_id", sess.ID)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	serveFile(w, data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		render.Filename(render.PrefixFinal, meta.Name, meta.Matricula, "xlsx"))
}

// handleRawTablesPDF renders every normalized line item, before any
// filtering, in the raw tabular layout.
func (s *Server) handleRawTablesPDF(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	meta := render.ReportMeta{Name: sess.Statement.Name, Matricula: sess.Statement.Matricula}
	data, err := render.RawTablePDF(sess.Statement.Items, meta)
	if err != nil {
		slog.ErrorContext(r.Context(), "PDF rendering failed", "error", err, "session_id", sess.ID)
		writeError(w, http.StatusInternalServerError, "failed to render raw tables")
		return
	}

	serveFile(w, data, "application/pdf",
		render.Filename(render.PrefixRawTables, meta.Name, meta.Matricula, "pdf"))
}

// session loads the path's session or writes the error response.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	id := r.PathValue("id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found or expired")
		} else {
			slog.ErrorContext(r.Context(), "Session lookup failed", "error", err, "session_id", id)
			writeError(w, http.StatusInternalServerError, "session lookup failed")
		}
		return session.Session{}, false
	}
	return sess, true
}

// reportSession is session plus the requirement that a report exists.
func (s *Server) reportSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return session.Session{}, false
	}
	if sess.Report == nil {
		writeError(w, http.StatusConflict, "no report generated for this session")
		return session.Session{}, false
	}
	return sess, true
}

func serveFile(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
