package services

import (
	"context"
	"fmt"
	"log/slog"

	"contracheques/internal/amqp"
	"contracheques/internal/calculo"
	"contracheques/internal/core"
	"contracheques/internal/extract"
	"contracheques/internal/normalize"
	"contracheques/internal/rubricas"
)

// AnalysisService orchestrates the analysis pipeline: extraction,
// normalization, rubric matching and the indébito report, plus the
// optional audit event on AMQP.
type AnalysisService struct {
	matcher    *rubricas.Matcher
	amqpClient *amqp.Client
}

func NewAnalysisService(vocab rubricas.Vocabulary, amqpClient *amqp.Client) *AnalysisService {
	return &AnalysisService{
		matcher:    rubricas.NewMatcher(vocab),
		amqpClient: amqpClient,
	}
}

// Analyze reads one contracheque PDF and returns the aggregated
// statement plus the per-table normalization outcomes. Skipped tables
// are reported, not fatal; a document yielding zero line items is
// core.ErrEmptyStatement.
func (s *AnalysisService) Analyze(ctx context.Context, pdfData []byte) (core.Statement, []normalize.TableResult, error) {
	doc, err := extract.ReadDocument(pdfData)
	if err != nil {
		return core.Statement{}, nil, fmt.Errorf("read document: %w", err)
	}

	stmt := core.Statement{Name: doc.Name, Matricula: doc.Matricula}
	results := make([]normalize.TableResult, 0, len(doc.Pages))

	for _, page := range doc.Pages {
		res := normalize.NormalizeGrid(page.Grid)
		if res.Skipped() {
			slog.WarnContext(ctx, "Skipping table",
				"page", page.Number,
				"reason", res.Skip.String())
			results = append(results, res)
			continue
		}

		date := normalize.ResolveCompetencyDate(page.Text)
		normalize.ApplyCompetencyDate(res.Items, date)

		stmt.Items = append(stmt.Items, res.Items...)
		results = append(results, res)
	}

	if stmt.IsEmpty() {
		return stmt, results, core.ErrEmptyStatement
	}

	slog.InfoContext(ctx, "Document analyzed",
		"matricula", stmt.Matricula,
		"pages", len(doc.Pages),
		"item_count", len(stmt.Items))

	return stmt, results, nil
}

// Filter matches the statement's deduction items against the rubric
// vocabulary at the given threshold. It returns the accepted items in
// document order and the per-description match results.
func (s *AnalysisService) Filter(stmt core.Statement, threshold int) ([]core.LineItem, []rubricas.MatchResult) {
	deductions := stmt.Deductions()
	results := s.matcher.Results(deductions, threshold)

	accepted := make(map[string]bool, len(results))
	for _, r := range results {
		if r.Accepted {
			accepted[r.Description] = true
		}
	}

	var matched []core.LineItem
	for _, it := range deductions {
		if accepted[it.Description] {
			matched = append(matched, it)
		}
	}
	return matched, results
}

// BuildReport confirms the user's selection against the matched items
// and produces the final report rows: the selection sorted by
// competency date plus the indébito summary. Selection is by
// description; every selected description must exist among the matched
// items.
func (s *AnalysisService) BuildReport(matched []core.LineItem, selected []string, receivedRaw string) ([]core.FinalLineItem, error) {
	if len(selected) == 0 {
		return nil, core.ErrNothingSelected
	}

	available := make(map[string]bool, len(matched))
	for _, it := range matched {
		available[it.Description] = true
	}

	want := make(map[string]bool, len(selected))
	for _, desc := range selected {
		if !available[desc] {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownSelection, desc)
		}
		want[desc] = true
	}

	selection := make([]core.LineItem, 0, len(matched))
	for _, it := range matched {
		if want[it.Description] {
			selection = append(selection, it)
		}
	}

	core.SortByCompetencyDate(selection)
	return calculo.AppendIndebito(selection, receivedRaw), nil
}

// PublishCompleted emits the audit event for a finished analysis. The
// event is best-effort: a missing client or a publish failure never
// fails the report that triggered it.
func (s *AnalysisService) PublishCompleted(ctx context.Context, sessionID string, stmt core.Statement, report []core.FinalLineItem, threshold int) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping audit event")
		return
	}

	selected := 0
	indebito := ""
	for _, row := range report {
		if !row.IsSummaryRow {
			selected++
			continue
		}
		if row.SummaryKind == core.SummaryIndebito {
			indebito = row.TotalRaw
		}
	}

	msg := amqp.NewAnalysisCompletedMessage(
		sessionID, stmt.Name, stmt.Matricula,
		len(stmt.Items), selected, threshold, indebito)

	if err := s.amqpClient.PublishAnalysisCompleted(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish audit event",
			"session_id", sessionID, "error", err)
	}
}

// Close releases the AMQP connection when one exists.
func (s *AnalysisService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close analysis service: %w", err)
		}
	}
	return nil
}
