package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contracheques/internal/core"
	"contracheques/internal/normalize"
	"contracheques/internal/rubricas"
	"contracheques/internal/session"
)

// stubAnalyzer stands in for the real pipeline: Analyze returns a
// canned statement, Filter accepts every deduction and BuildReport
// appends a single summary row.
type stubAnalyzer struct {
	stmt       core.Statement
	analyzeErr error
	published  int
}

func (a *stubAnalyzer) Analyze(_ context.Context, _ []byte) (core.Statement, []normalize.TableResult, error) {
	if a.analyzeErr != nil {
		return core.Statement{}, nil, a.analyzeErr
	}
	return a.stmt, []normalize.TableResult{{Page: 2, Skip: normalize.SkipNoHeader}}, nil
}

func (a *stubAnalyzer) Filter(stmt core.Statement, threshold int) ([]core.LineItem, []rubricas.MatchResult) {
	deductions := stmt.Deductions()
	results := make([]rubricas.MatchResult, 0, len(deductions))
	seen := map[string]bool{}
	for _, it := range deductions {
		if !seen[it.Description] {
			seen[it.Description] = true
			results = append(results, rubricas.MatchResult{Description: it.Description, Accepted: true, Score: 100})
		}
	}
	return deductions, results
}

func (a *stubAnalyzer) BuildReport(matched []core.LineItem, selected []string, receivedRaw string) ([]core.FinalLineItem, error) {
	if len(selected) == 0 {
		return nil, core.ErrNothingSelected
	}
	out := make([]core.FinalLineItem, 0, len(matched)+1)
	for _, it := range matched {
		out = append(out, core.FinalLineItem{LineItem: it})
	}
	out = append(out, core.FinalLineItem{
		LineItem:     core.LineItem{Description: core.MarkerIndebito, TotalRaw: "100,00"},
		IsSummaryRow: true,
		SummaryKind:  core.SummaryIndebito,
	})
	return out, nil
}

func (a *stubAnalyzer) PublishCompleted(context.Context, string, core.Statement, []core.FinalLineItem, int) {
	a.published++
}

func testStatement() core.Statement {
	return core.Statement{
		Name:      "FULANO DE TAL",
		Matricula: "014.642-0 C",
		Items: []core.LineItem{
			{Code: "101", Description: "CONTRIB SINDICAL", TotalRaw: "30,00", Date: "01/2020", Competency: "Página 1", SourcePage: 1},
			{Code: "102", Description: "SEGURO DE VIDA", TotalRaw: "40,00", Date: "02/2020", Competency: "Página 1", SourcePage: 1},
		},
	}
}

func newTestServer(t *testing.T, analyzer Analyzer) (*Server, session.Store) {
	t.Helper()
	store := session.NewMemoryStore(10, time.Minute)
	t.Cleanup(func() { store.Close() })

	srv := NewServer(":0", analyzer, store, 85, 1<<20)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, store
}

func uploadRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "contracheque.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("%PDF-1.4 fake")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreateStatement(t *testing.T) {
	analyzer := &stubAnalyzer{stmt: testStatement()}
	srv, _ := newTestServer(t, analyzer)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, uploadRequest(t, "/api/statements"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionID string `json:"session_id"`
		Matricula string `json:"matricula"`
		ItemCount int    `json:"item_count"`
		Skipped   []struct {
			Page   int    `json:"page"`
			Reason string `json:"reason"`
		} `json:"skipped_tables"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.SessionID, "sess_") {
		t.Fatalf("session id = %q", resp.SessionID)
	}
	if resp.ItemCount != 2 || resp.Matricula != "014.642-0 C" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Skipped) != 1 || resp.Skipped[0].Page != 2 {
		t.Fatalf("skipped tables not reported: %+v", resp.Skipped)
	}
}

func TestCreateStatementEmptyDocument(t *testing.T) {
	analyzer := &stubAnalyzer{analyzeErr: core.ErrEmptyStatement}
	srv, _ := newTestServer(t, analyzer)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, uploadRequest(t, "/api/statements"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestCreateStatementMissingFile(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{stmt: testStatement()})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("other", "x")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/statements", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetStatementNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{stmt: testStatement()})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/statements/sess_missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func seedSession(t *testing.T, store session.Store) session.Session {
	t.Helper()
	sess := session.Session{
		ID:        session.NewID(),
		Statement: testStatement(),
		CreatedAt: time.Now(),
	}
	if err := store.Put(context.Background(), sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return sess
}

func TestFilterAndReportFlow(t *testing.T) {
	analyzer := &stubAnalyzer{stmt: testStatement()}
	srv, store := newTestServer(t, analyzer)
	sess := seedSession(t, store)

	// Filter
	body := strings.NewReader(`{"threshold": 90}`)
	req := httptest.NewRequest(http.MethodPost, "/api/statements/"+sess.ID+"/filter", body)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("filter status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var filterResp struct {
		Threshold int `json:"threshold"`
		Matched   []struct {
			Description string `json:"description"`
		} `json:"matched"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&filterResp); err != nil {
		t.Fatalf("decode filter response: %v", err)
	}
	if filterResp.Threshold != 90 || len(filterResp.Matched) != 2 {
		t.Fatalf("unexpected filter response: %+v", filterResp)
	}

	// Report
	body = strings.NewReader(`{"descriptions": ["CONTRIB SINDICAL", "SEGURO DE VIDA"], "received": "50,00"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/statements/"+sess.ID+"/report", body)
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if analyzer.published != 1 {
		t.Fatalf("audit event published %d times, want 1", analyzer.published)
	}

	// Download PDF
	req = httptest.NewRequest(http.MethodGet, "/api/statements/"+sess.ID+"/report.pdf", nil)
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("report.pdf status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("response body is not a PDF")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Contracheque_Descontos_Finais") {
		t.Fatalf("content disposition = %q", cd)
	}

	// Download XLSX
	req = httptest.NewRequest(http.MethodGet, "/api/statements/"+sess.ID+"/report.xlsx", nil)
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("report.xlsx status = %d", rec.Code)
	}
}

func TestReportRequiresFilter(t *testing.T) {
	srv, store := newTestServer(t, &stubAnalyzer{stmt: testStatement()})
	sess := seedSession(t, store)

	body := strings.NewReader(`{"descriptions": ["CONTRIB SINDICAL"], "received": "0,00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/statements/"+sess.ID+"/report", body)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestReportDownloadRequiresReport(t *testing.T) {
	srv, store := newTestServer(t, &stubAnalyzer{stmt: testStatement()})
	sess := seedSession(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/statements/"+sess.ID+"/report.pdf", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestFilterRejectsBadThreshold(t *testing.T) {
	srv, store := newTestServer(t, &stubAnalyzer{stmt: testStatement()})
	sess := seedSession(t, store)

	body := strings.NewReader(`{"threshold": 150}`)
	req := httptest.NewRequest(http.MethodPost, "/api/statements/"+sess.ID+"/filter", body)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestRawTablesPDF(t *testing.T) {
	srv, store := newTestServer(t, &stubAnalyzer{stmt: testStatement()})
	sess := seedSession(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/statements/"+sess.ID+"/raw.pdf", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("response body is not a PDF")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{stmt: testStatement()})

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
}
