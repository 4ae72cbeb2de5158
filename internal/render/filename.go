// Package render produces the downloadable artifacts: landscape PDF
// reports in the fixed SEAD column layout, an XLSX export, and the
// filename convention the packaging side expects.
package render

import (
	"fmt"
	"regexp"
	"strings"
)

// Report prefixes used in download filenames.
const (
	PrefixRawTables = "Contracheque"
	PrefixFinal     = "Contracheque_Descontos_Finais"
)

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)

// SanitizeFilenamePart makes an extracted value safe for filenames:
// spaces become underscores, anything outside letters, digits, "_",
// "-" and "." is dropped.
func SanitizeFilenamePart(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	return unsafeFilenameChars.ReplaceAllString(s, "")
}

// Filename assembles "{prefix}_{name}_{id}.{ext}". Name and id default
// to the not-determined placeholder upstream; here they are only
// sanitized.
func Filename(prefix, name, matricula, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s",
		prefix,
		SanitizeFilenamePart(name),
		SanitizeFilenamePart(matricula),
		ext,
	)
}
