package manifest

import (
	"os"

	"github.com/sparqlcheck/sparqlcheck/internal/parse"
	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

// NTriplesLoader is the default triple-extraction collaborator: it reads a
// manifest already serialized one statement per line. Richer RDF syntaxes
// need an external loader.
func NTriplesLoader(path string) ([]result.Triple, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse.ReadTriples(data)
}
