package extract

import (
	"regexp"
	"strings"
)

// NotDetermined is the placeholder for identity fields the document
// does not yield. It flows into report titles and filenames unchanged.
const NotDetermined = "N/D"

var (
	// Leading non-digit run of the line following the NOME label.
	namePattern = regexp.MustCompile(`^[^\d]+`)

	// MATRÍCULA-SEQ-DIG values look like "014.642-0 C".
	matriculaPattern = regexp.MustCompile(`\d{3}\.\d{3}-\d\s*[A-Z]*`)
)

// ExtractIdentity scans the first page's text for the holder's name and
// matrícula. The SEAD layout puts each value on the line following its
// label:
//
//	NOME
//	FULANO DE TAL
//	MATRÍCULA-SEQ-DIG
//	014.642-0 C
//
// Fields not found come back as NotDetermined.
func ExtractIdentity(pageText string) (name, matricula string) {
	name, matricula = NotDetermined, NotDetermined

	lines := strings.Split(pageText, "\n")
	for i, line := range lines {
		upper := strings.ToUpper(line)
		if strings.Contains(upper, "NOME") && i+1 < len(lines) {
			if m := namePattern.FindString(strings.TrimSpace(lines[i+1])); m != "" {
				name = strings.TrimSpace(m)
			}
		}
		if strings.Contains(upper, "MATRÍCULA-SEQ-DIG") && i+1 < len(lines) {
			if m := matriculaPattern.FindString(lines[i+1]); m != "" {
				matricula = strings.TrimSpace(m)
			}
		}
	}
	return name, matricula
}
