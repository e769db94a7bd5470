package manifest

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

// TestConfig is one manifest entry, constructed once during resolution and
// immutable thereafter.
type TestConfig struct {
	// Name is the declared test name; URI identifies the entry node.
	Name string
	URI  string

	// Type is the declared test-type identifier (may be empty).
	Type string

	// Comment is the optional human description.
	Comment string

	// Query is the query or update text location.
	Query string

	// DataFiles are background data sources; NamedDataFiles are named
	// graph sources.
	DataFiles      []string
	NamedDataFiles []string

	// ExpectedResult is the optional recorded result file.
	ExpectedResult string

	// AuxFiles are additional action files beyond query and data.
	AuxFiles []string

	// LaxCardinality selects order-insensitive duplicate-tolerant
	// comparison for this test.
	LaxCardinality bool

	// Derived flags consumed by the classification engine.
	Approved      bool
	Withdrawn     bool
	HasEntailment bool
}

// Loader is the triple-extraction collaborator: it yields the parsed
// triples of one manifest file.
type Loader func(path string) ([]result.Triple, error)

// Resolve builds the flat test-configuration list for the manifest at
// rootPath, expanding mf:include recursively depth-first. A manifest that
// (transitively) includes itself is a configuration error; a manifest
// reachable through several include paths expands once.
func Resolve(rootPath string, load Loader) ([]TestConfig, error) {
	r := &resolver{
		load:    load,
		inStack: make(map[string]bool),
		done:    make(map[string]bool),
	}
	return r.resolve(rootPath)
}

type resolver struct {
	load    Loader
	inStack map[string]bool
	done    map[string]bool
}

func (r *resolver) resolve(path string) ([]TestConfig, error) {
	clean := filepath.Clean(path)
	if r.inStack[clean] {
		return nil, fmt.Errorf("manifest inclusion cycle at %s", clean)
	}
	if r.done[clean] {
		// Diamond inclusion: already expanded on another path.
		return nil, nil
	}
	r.inStack[clean] = true
	defer delete(r.inStack, clean)

	triples, err := r.load(clean)
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", clean, err)
	}
	ix := NewIndex(triples)
	base := filepath.Dir(clean)

	var configs []TestConfig

	// Includes first: depth-first, in declared order.
	for _, man := range r.manifestNodes(ix) {
		for _, head := range ix.Objects(man, mfInclude) {
			for _, item := range ix.List(head) {
				sub, err := termPath(base, item)
				if err != nil {
					return nil, fmt.Errorf("manifest %s: include: %w", clean, err)
				}
				nested, err := r.resolve(sub)
				if err != nil {
					return nil, err
				}
				configs = append(configs, nested...)
			}
		}
	}

	for _, man := range r.manifestNodes(ix) {
		for _, head := range ix.Objects(man, mfEntries) {
			for _, entry := range ix.List(head) {
				cfg, err := buildConfig(ix, base, entry)
				if err != nil {
					return nil, fmt.Errorf("manifest %s: %w", clean, err)
				}
				configs = append(configs, cfg)
			}
		}
	}

	r.done[clean] = true
	return configs, nil
}

// manifestNodes finds the subjects carrying include or entries lists, in
// first-appearance order so repeated resolutions agree.
func (r *resolver) manifestNodes(ix *Index) []result.Value {
	var nodes []result.Value
	for _, subject := range ix.subjects {
		preds := ix.bySubject[subject]
		if _, ok := preds[mfEntries]; !ok {
			if _, ok := preds[mfInclude]; !ok {
				continue
			}
		}
		nodes = append(nodes, subjectTerm(subject))
	}
	return nodes
}

// buildConfig assembles one immutable TestConfig from an entry node.
func buildConfig(ix *Index, base string, entry result.Value) (TestConfig, error) {
	cfg := TestConfig{URI: termString(entry)}

	if v := ix.Object(entry, mfName); v != nil {
		cfg.Name = termString(v)
	}
	if cfg.Name == "" {
		cfg.Name = cfg.URI
	}
	if v := ix.Object(entry, rdfType); v != nil {
		cfg.Type = termString(v)
	}
	if v := ix.Object(entry, rdfsComment); v != nil {
		cfg.Comment = termString(v)
	}

	if actions := ix.Objects(entry, mfAction); len(actions) > 0 {
		if err := resolveAction(ix, base, actions[0], &cfg); err != nil {
			return cfg, fmt.Errorf("test %s: %w", cfg.Name, err)
		}
		// Extra action terms beyond the first are auxiliary files.
		for _, extra := range actions[1:] {
			p, err := termPath(base, extra)
			if err != nil {
				return cfg, fmt.Errorf("test %s: aux action: %w", cfg.Name, err)
			}
			cfg.AuxFiles = append(cfg.AuxFiles, p)
		}
	}

	if v := ix.Object(entry, mfResult); v != nil {
		p, err := termPath(base, v)
		if err != nil {
			return cfg, fmt.Errorf("test %s: result: %w", cfg.Name, err)
		}
		cfg.ExpectedResult = p
	}

	if v := ix.Object(entry, mfResultCardinality); v != nil {
		cfg.LaxCardinality = termString(v) == mfLaxCardinality
	}

	if v := ix.Object(entry, dawgApproval); v != nil {
		switch termString(v) {
		case dawgApproved:
			cfg.Approved = true
		case dawgWithdrawn:
			cfg.Withdrawn = true
		}
	}

	cfg.HasEntailment = ix.Object(entry, sparqlEntailmentRegime) != nil

	return cfg, nil
}

// resolveAction handles both action shapes: a direct file term, or a node
// with query/data/graph-data arcs.
func resolveAction(ix *Index, base string, action result.Value, cfg *TestConfig) error {
	// Direct file action (syntax tests point straight at the query).
	// Blank-node actions always carry arcs; anything else without a
	// query/request arc names the query file itself.
	if ix.Object(action, qtQuery) == nil && ix.Object(action, utRequest) == nil {
		if _, isBlank := action.(result.BlankNode); !isBlank {
			p, err := termPath(base, action)
			if err != nil {
				return fmt.Errorf("action: %w", err)
			}
			cfg.Query = p
			return nil
		}
	}

	if v := ix.Object(action, qtQuery); v != nil {
		p, err := termPath(base, v)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		cfg.Query = p
	} else if v := ix.Object(action, utRequest); v != nil {
		p, err := termPath(base, v)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		cfg.Query = p
	}

	for _, pred := range []string{qtData, utData} {
		for _, v := range ix.Objects(action, pred) {
			p, err := termPath(base, v)
			if err != nil {
				return fmt.Errorf("data: %w", err)
			}
			cfg.DataFiles = append(cfg.DataFiles, p)
		}
	}
	for _, pred := range []string{qtGraphData, utGraphData} {
		for _, v := range ix.Objects(action, pred) {
			p, err := termPath(base, v)
			if err != nil {
				return fmt.Errorf("graph data: %w", err)
			}
			cfg.NamedDataFiles = append(cfg.NamedDataFiles, p)
		}
	}
	return nil
}

// termString renders a term as its bare string: URIs lose their brackets,
// literals their quoting.
func termString(v result.Value) string {
	switch t := v.(type) {
	case result.URI:
		return string(t)
	case result.Literal:
		return t.Lexical
	case result.BlankNode:
		return "_:" + t.Label
	default:
		return ""
	}
}

// subjectTerm reverses Token() for index keys.
func subjectTerm(token string) result.Value {
	if strings.HasPrefix(token, "_:") {
		return result.BlankNode{Label: strings.TrimPrefix(token, "_:")}
	}
	return result.URI(strings.Trim(token, "<>"))
}

// termPath maps a file term to a local path, resolving file: URIs and
// relative references against the manifest directory.
func termPath(base string, v result.Value) (string, error) {
	s := termString(v)
	if s == "" {
		return "", fmt.Errorf("term %s does not name a file", v.Token())
	}
	if strings.HasPrefix(s, "file:") {
		u, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("bad file URI %q: %w", s, err)
		}
		return u.Path, nil
	}
	if strings.Contains(s, "://") {
		return "", fmt.Errorf("non-local reference %q", s)
	}
	if filepath.IsAbs(s) {
		return s, nil
	}
	return filepath.Join(base, s), nil
}
