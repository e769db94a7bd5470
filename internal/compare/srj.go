package compare

import (
	"fmt"

	jsoncanonicalizer "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// SRJDocuments compares two tagged-JSON result documents as parsed
// structural equality of the canonical JSON rendering (RFC 8785), so key
// order and insignificant whitespace never cause mismatches. Malformed
// JSON on either side is an unresolved verdict, never a mismatch.
func SRJDocuments(expected, actual []byte) Verdict {
	expCanon, err := jsoncanonicalizer.Transform(expected)
	if err != nil {
		return Unresolved(fmt.Sprintf("malformed output: expected document: %v", err))
	}
	actCanon, err := jsoncanonicalizer.Transform(actual)
	if err != nil {
		return Unresolved(fmt.Sprintf("malformed output: actual document: %v", err))
	}
	if string(expCanon) == string(actCanon) {
		return Match()
	}
	return Mismatch(sideBySide(string(expCanon), string(actCanon)))
}
