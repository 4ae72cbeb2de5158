// Package rubricas fuzzy-filters deduction line items against the
// controlled vocabulary of legitimate payroll codes. Descriptions come
// from a finite known set but arrive corrupted by extraction artifacts
// (accents, spacing, truncation), so matching is approximate and keyed
// on distinct description values rather than per row.
package rubricas

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Vocabulary is the ordered list of canonical rubric descriptions, one
// per glossary line. Read-only after loading.
type Vocabulary []string

// Load reads a line-delimited UTF-8 vocabulary file. A missing or
// unreadable file degrades to an empty vocabulary (the matcher then
// accepts nothing); only a read failure mid-file is reported.
func Load(path string) (Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("vocabulary file unavailable, matching everything off",
			"path", path, "error", err)
		return nil, nil
	}
	defer f.Close()

	var vocab Vocabulary
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		vocab = append(vocab, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return vocab, nil
}
