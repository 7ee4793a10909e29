package inventory

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var upper = cases.Upper(language.Und)

// NormalizeBatchCode canonicalizes a user supplied batch code so that
// "b-001 " and "B-001" resolve to the same batch.
func NormalizeBatchCode(code string) string {
	return upper.String(norm.NFKC.String(strings.TrimSpace(code)))
}
