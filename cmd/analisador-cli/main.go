package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"contracheques/internal/render"
	"contracheques/internal/rubricas"
	"contracheques/internal/services"
)

// analisador-cli runs the whole pipeline against one PDF from the
// command line: extract, match against the vocabulary, build the
// indébito report and write the output files.
func main() {
	_ = godotenv.Load()

	var (
		pdfPath   = flag.String("pdf", "", "path to the contracheque PDF (required)")
		vocabPath = flag.String("rubricas", "Rubricas.txt", "path to the rubric vocabulary file")
		threshold = flag.Int("threshold", 85, "minimum similarity score (0-100) to accept a description")
		received  = flag.String("received", "0,00", "amount already received by the author (B)")
		outDir    = flag.String("out", ".", "directory for the generated files")
		rawOnly   = flag.Bool("raw-only", false, "only write the raw tables PDF, skip matching and the report")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "missing required -pdf flag")
		flag.Usage()
		os.Exit(2)
	}
	if *threshold < 0 || *threshold > 100 {
		fmt.Fprintf(os.Stderr, "threshold %d out of range (0-100)\n", *threshold)
		os.Exit(2)
	}

	if err := run(*pdfPath, *vocabPath, *outDir, *received, *threshold, *rawOnly); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(pdfPath, vocabPath, outDir, received string, threshold int, rawOnly bool) error {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	vocab, err := rubricas.Load(vocabPath)
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}

	svc := services.NewAnalysisService(vocab, nil)
	defer svc.Close()

	ctx := context.Background()
	stmt, tables, err := svc.Analyze(ctx, data)
	if err != nil {
		return err
	}

	for _, t := range tables {
		if t.Skipped() {
			fmt.Fprintf(os.Stderr, "page %d skipped: %s\n", t.Page, t.Skip)
		}
	}
	fmt.Printf("%s (%s): %d line items\n", stmt.Name, stmt.Matricula, len(stmt.Items))

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	meta := render.ReportMeta{Name: stmt.Name, Matricula: stmt.Matricula}

	rawPDF, err := render.RawTablePDF(stmt.Items, meta)
	if err != nil {
		return fmt.Errorf("render raw tables: %w", err)
	}
	rawName := render.Filename(render.PrefixRawTables, meta.Name, meta.Matricula, "pdf")
	if err := writeFile(outDir, rawName, rawPDF); err != nil {
		return err
	}

	if rawOnly {
		return nil
	}

	matched, results := svc.Filter(stmt, threshold)
	if len(matched) == 0 {
		return fmt.Errorf("no descriptions matched the vocabulary at threshold %d", threshold)
	}

	// Select every accepted description; interactive narrowing belongs
	// to the HTTP flow.
	var selected []string
	for _, r := range results {
		if r.Accepted {
			selected = append(selected, r.Description)
			fmt.Printf("  aceito: %s (score %d)\n", r.Description, r.Score)
		}
	}

	report, err := svc.BuildReport(matched, selected, received)
	if err != nil {
		return err
	}

	finalPDF, err := render.FinalReportPDF(report, meta)
	if err != nil {
		return fmt.Errorf("render final report: %w", err)
	}
	pdfName := render.Filename(render.PrefixFinal, meta.Name, meta.Matricula, "pdf")
	if err := writeFile(outDir, pdfName, finalPDF); err != nil {
		return err
	}

	finalXLSX, err := render.FinalReportXLSX(report, meta)
	if err != nil {
		return fmt.Errorf("render final report xlsx: %w", err)
	}
	xlsxName := render.Filename(render.PrefixFinal, meta.Name, meta.Matricula, "xlsx")
	return writeFile(outDir, xlsxName, finalXLSX)
}

func writeFile(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	fmt.Println("wrote", path)
	return nil
}
