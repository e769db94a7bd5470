// Package manifest builds one immutable test configuration per manifest
// entry, expanding nested manifest inclusion recursively. It consumes
// already-parsed triples; RDF syntax handling beyond the line-oriented
// reader is an external collaborator's concern.
package manifest

import (
	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

// Index is a subject -> predicate -> objects view over a triple set.
// Subjects and the index keys are term tokens, so URI and blank-node
// subjects coexist without collision. First-appearance subject order is
// kept so traversals stay deterministic.
type Index struct {
	bySubject map[string]map[string][]result.Value
	subjects  []string
}

// NewIndex builds an index over triples.
func NewIndex(triples []result.Triple) *Index {
	ix := &Index{bySubject: make(map[string]map[string][]result.Value)}
	for _, t := range triples {
		s := t.Subject.Token()
		preds, ok := ix.bySubject[s]
		if !ok {
			preds = make(map[string][]result.Value)
			ix.bySubject[s] = preds
			ix.subjects = append(ix.subjects, s)
		}
		p, ok := t.Predicate.(result.URI)
		if !ok {
			// Predicates must be URIs; anything else is noise.
			continue
		}
		preds[string(p)] = append(preds[string(p)], t.Object)
	}
	return ix
}

// Objects returns every object of (subject, predicate) in insertion order.
func (ix *Index) Objects(subject result.Value, predicate string) []result.Value {
	if subject == nil {
		return nil
	}
	return ix.bySubject[subject.Token()][predicate]
}

// Object returns the first object of (subject, predicate), or nil.
func (ix *Index) Object(subject result.Value, predicate string) result.Value {
	objs := ix.Objects(subject, predicate)
	if len(objs) == 0 {
		return nil
	}
	return objs[0]
}

// List walks an RDF collection from its head node, returning the item
// terms in order. A malformed list (missing rest) terminates at the break.
func (ix *Index) List(head result.Value) []result.Value {
	var items []result.Value
	node := head
	for node != nil {
		if u, ok := node.(result.URI); ok && string(u) == rdfNil {
			break
		}
		first := ix.Object(node, rdfFirst)
		if first == nil {
			break
		}
		items = append(items, first)
		node = ix.Object(node, rdfRest)
	}
	return items
}
