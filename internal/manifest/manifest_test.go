package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const simpleManifest = `<http://ex/man> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#Manifest> .
<http://ex/man> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#entries> _:l1 .
_:l1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> <http://ex/t1> .
_:l1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> _:l2 .
_:l2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> <http://ex/t2> .
_:l2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
<http://ex/t1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#QueryEvaluationTest> .
<http://ex/t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#name> "eval-1" .
<http://ex/t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#action> _:a1 .
_:a1 <http://www.w3.org/2001/sw/DataAccess/tests/test-query#query> "q1.rq" .
_:a1 <http://www.w3.org/2001/sw/DataAccess/tests/test-query#data> "data.nt" .
_:a1 <http://www.w3.org/2001/sw/DataAccess/tests/test-query#graphData> "g1.nt" .
<http://ex/t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#result> "r1.srx" .
<http://ex/t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-dawg#approval> <http://www.w3.org/2001/sw/DataAccess/tests/test-dawg#Approved> .
<http://ex/t2> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#NegativeSyntaxTest> .
<http://ex/t2> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#name> "syn-bad-1" .
<http://ex/t2> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#action> "bad.rq" .
<http://ex/t2> <http://www.w3.org/2001/sw/DataAccess/tests/test-dawg#approval> <http://www.w3.org/2001/sw/DataAccess/tests/test-dawg#Withdrawn> .
<http://ex/t2> <http://www.w3.org/ns/sparql#entailmentRegime> <http://www.w3.org/ns/entailment/RDFS> .
`

func TestResolve_Entries(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "manifest.nt", simpleManifest)

	configs, err := Resolve(path, NTriplesLoader)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	t1 := configs[0]
	assert.Equal(t, "eval-1", t1.Name)
	assert.Equal(t, "http://ex/t1", t1.URI)
	assert.Equal(t, mfNS+"QueryEvaluationTest", t1.Type)
	assert.Equal(t, filepath.Join(dir, "q1.rq"), t1.Query)
	assert.Equal(t, []string{filepath.Join(dir, "data.nt")}, t1.DataFiles)
	assert.Equal(t, []string{filepath.Join(dir, "g1.nt")}, t1.NamedDataFiles)
	assert.Equal(t, filepath.Join(dir, "r1.srx"), t1.ExpectedResult)
	assert.True(t, t1.Approved)
	assert.False(t, t1.Withdrawn)
	assert.False(t, t1.HasEntailment)

	t2 := configs[1]
	assert.Equal(t, "syn-bad-1", t2.Name)
	assert.Equal(t, filepath.Join(dir, "bad.rq"), t2.Query)
	assert.Empty(t, t2.ExpectedResult)
	assert.False(t, t2.Approved)
	assert.True(t, t2.Withdrawn)
	assert.True(t, t2.HasEntailment)
}

func TestResolve_NestedInclude(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))

	writeManifest(t, filepath.Join(dir, "sub"), "manifest.nt", `<http://ex/sub> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#entries> _:l1 .
_:l1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> <http://ex/sub-t1> .
_:l1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
<http://ex/sub-t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#name> "nested-1" .
<http://ex/sub-t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#action> "q.rq" .
`)

	root := writeManifest(t, dir, "manifest.nt", `<http://ex/root> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#include> _:i1 .
_:i1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> "sub/manifest.nt" .
_:i1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
`)

	configs, err := Resolve(root, NTriplesLoader)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "nested-1", configs[0].Name)

	// Nested action paths resolve against the nested manifest directory.
	assert.Equal(t, filepath.Join(dir, "sub", "q.rq"), configs[0].Query)
}

func TestResolve_InclusionCycle(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.nt", `<http://ex/a> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#include> _:i1 .
_:i1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> "b.nt" .
_:i1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
`)
	writeManifest(t, dir, "b.nt", `<http://ex/b> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#include> _:i1 .
_:i1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> "a.nt" .
_:i1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
`)

	_, err := Resolve(filepath.Join(dir, "a.nt"), NTriplesLoader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

// Two siblings may include the same sub-manifest; that is a diamond, not a
// cycle, and the shared manifest expands exactly once.
func TestResolve_DiamondInclusionExpandsOnce(t *testing.T) {
	dir := t.TempDir()

	writeManifest(t, dir, "shared.nt", `<http://ex/shared> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#entries> _:l1 .
_:l1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> <http://ex/shared-t1> .
_:l1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
<http://ex/shared-t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#name> "shared-1" .
<http://ex/shared-t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#action> "q.rq" .
`)
	includeShared := `<http://ex/%s> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#include> _:i1 .
_:i1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> "shared.nt" .
_:i1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
`
	writeManifest(t, dir, "a.nt", fmt.Sprintf(includeShared, "a"))
	writeManifest(t, dir, "b.nt", fmt.Sprintf(includeShared, "b"))
	root := writeManifest(t, dir, "root.nt", `<http://ex/root> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#include> _:i1 .
_:i1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> "a.nt" .
_:i1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> _:i2 .
_:i2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> "b.nt" .
_:i2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
`)

	configs, err := Resolve(root, NTriplesLoader)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "shared-1", configs[0].Name)
}

// A file holding several manifest nodes resolves them in declaration order
// every time.
func TestResolve_MultipleManifestNodesDeclaredOrder(t *testing.T) {
	dir := t.TempDir()
	entryList := func(man, test, name string) string {
		return fmt.Sprintf(`<http://ex/%s> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#entries> _:l%s .
_:l%s <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> <http://ex/%s> .
_:l%s <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
<http://ex/%s> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#name> "%s" .
<http://ex/%s> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#action> "q.rq" .
`, man, man, man, test, man, test, name, test)
	}
	path := writeManifest(t, dir, "manifest.nt",
		entryList("m1", "t1", "first")+entryList("m2", "t2", "second")+entryList("m3", "t3", "third"))

	for i := 0; i < 5; i++ {
		configs, err := Resolve(path, NTriplesLoader)
		require.NoError(t, err)
		require.Len(t, configs, 3)
		assert.Equal(t, "first", configs[0].Name)
		assert.Equal(t, "second", configs[1].Name)
		assert.Equal(t, "third", configs[2].Name)
	}
}

func TestResolve_MissingManifestIsError(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope.nt"), NTriplesLoader)
	require.Error(t, err)
}

func TestIndex_List(t *testing.T) {
	triples := []result.Triple{
		{Subject: result.BlankNode{Label: "l1"}, Predicate: result.URI(rdfFirst), Object: result.Literal{Lexical: "a"}},
		{Subject: result.BlankNode{Label: "l1"}, Predicate: result.URI(rdfRest), Object: result.BlankNode{Label: "l2"}},
		{Subject: result.BlankNode{Label: "l2"}, Predicate: result.URI(rdfFirst), Object: result.Literal{Lexical: "b"}},
		{Subject: result.BlankNode{Label: "l2"}, Predicate: result.URI(rdfRest), Object: result.URI(rdfNil)},
	}
	ix := NewIndex(triples)

	items := ix.List(result.BlankNode{Label: "l1"})
	require.Len(t, items, 2)
	assert.Equal(t, result.Literal{Lexical: "a"}, items[0])
	assert.Equal(t, result.Literal{Lexical: "b"}, items[1])
}
