package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEngine = `#!/bin/sh
last=""
parseonly=0
for a in "$@"; do
  [ "$a" = "-n" ] && parseonly=1
  last="$a"
done
if [ "$parseonly" = 1 ]; then
  grep -q SYNTAX_ERROR "$last" && exit 1
  exit 0
fi
cat "${last}.out"
`

const testSRX = `<?xml version="1.0"?>
<sparql xmlns="http://www.w3.org/2005/sparql-results#">
  <head><variable name="x"/></head>
  <results>
    <result><binding name="x"><literal>1</literal></binding></result>
  </results>
</sparql>
`

const testSRXOther = `<?xml version="1.0"?>
<sparql xmlns="http://www.w3.org/2005/sparql-results#">
  <head><variable name="x"/></head>
  <results>
    <result><binding name="x"><literal>2</literal></binding></result>
  </results>
</sparql>
`

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newSuite lays out a minimal manifest with one evaluation test whose
// engine output is taken from the query's sibling .out file.
func newSuite(t *testing.T, dir, engineOutput, expected string) (enginePath, manifestPath string) {
	t.Helper()

	enginePath = filepath.Join(dir, "engine.sh")
	require.NoError(t, os.WriteFile(enginePath, []byte(testEngine), 0o755))

	writeTestFile(t, dir, "q.rq", "SELECT ?x WHERE { ?s ?p ?x }")
	writeTestFile(t, dir, "q.rq.out", engineOutput)
	writeTestFile(t, dir, "expected.srx", expected)

	manifestPath = writeTestFile(t, dir, "manifest.nt", `<http://ex/man> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#entries> _:l1 .
_:l1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> <http://ex/t1> .
_:l1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
<http://ex/t1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#QueryEvaluationTest> .
<http://ex/t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#name> "eval-1" .
<http://ex/t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#action> _:a1 .
_:a1 <http://www.w3.org/2001/sw/DataAccess/tests/test-query#query> "q.rq" .
<http://ex/t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#result> "expected.srx" .
`)
	return enginePath, manifestPath
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errBuf.String(), err
}

func TestRunCommand_AllPass(t *testing.T) {
	dir := t.TempDir()
	engine, man := newSuite(t, dir, testSRX, testSRX)

	stdout, _, err := execute(t, "run", man, "--engine", engine, "--work-dir", filepath.Join(dir, "work"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "passed 1, failed 0")
}

func TestRunCommand_FailureExitCode(t *testing.T) {
	dir := t.TempDir()
	engine, man := newSuite(t, dir, testSRXOther, testSRX)

	stdout, _, err := execute(t, "run", man, "--engine", engine, "--work-dir", filepath.Join(dir, "work"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "FAILED")
	assert.Contains(t, stdout, "eval-1")
}

func TestRunCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	engine, man := newSuite(t, dir, testSRX, testSRX)

	stdout, _, err := execute(t, "--format", "json", "run", man, "--engine", engine,
		"--work-dir", filepath.Join(dir, "work"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.NotNil(t, resp.Data)
}

func TestRunCommand_MissingManifest(t *testing.T) {
	dir := t.TempDir()
	engine, _ := newSuite(t, dir, testSRX, testSRX)

	_, _, err := execute(t, "run", filepath.Join(dir, "absent.nt"), "--engine", engine)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	engine, man := newSuite(t, dir, testSRX, testSRX)
	cfg := writeTestFile(t, dir, "run.yaml", "engine: "+engine+"\nparallelism: 2\n")

	stdout, _, err := execute(t, "run", man, "--config", cfg, "--work-dir", filepath.Join(dir, "work"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "passed 1")
}

func TestRunAndHistory_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	engine, man := newSuite(t, dir, testSRX, testSRX)
	db := filepath.Join(dir, "history.db")

	_, _, err := execute(t, "run", man, "--engine", engine, "--db", db,
		"--work-dir", filepath.Join(dir, "work"))
	require.NoError(t, err)

	stdout, _, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, man)
	assert.Contains(t, stdout, "passed 1/1")
}

func TestClassifyCommand(t *testing.T) {
	dir := t.TempDir()
	man := writeTestFile(t, dir, "manifest.nt", `<http://ex/man> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#entries> _:l1 .
_:l1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> <http://ex/t1> .
_:l1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> _:l2 .
_:l2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> <http://ex/t2> .
_:l2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
<http://ex/t1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#NegativeSyntaxTest> .
<http://ex/t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#name> "syn-1" .
<http://ex/t1> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#action> "bad.rq" .
<http://ex/t2> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#QueryEvaluationTest> .
<http://ex/t2> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#name> "eval-1" .
<http://ex/t2> <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#action> "q.rq" .
<http://ex/t2> <http://www.w3.org/2001/sw/DataAccess/tests/test-dawg#approval> <http://www.w3.org/2001/sw/DataAccess/tests/test-dawg#Withdrawn> .
`)

	stdout, _, err := execute(t, "classify", man)
	require.NoError(t, err)
	assert.Contains(t, stdout, "parse-only")
	assert.Contains(t, stdout, "skip (withdrawn)")
}

func TestCompareCommand_Match(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.srx", testSRX)
	b := writeTestFile(t, dir, "b.srx", testSRX)

	stdout, _, err := execute(t, "compare", a, b)
	require.NoError(t, err)
	assert.Contains(t, stdout, "match")
}

func TestCompareCommand_Mismatch(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.srx", testSRX)
	b := writeTestFile(t, dir, "b.srx", testSRXOther)

	stdout, _, err := execute(t, "compare", a, b)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "MISMATCH")
}

func TestCompareCommand_FormatMismatch(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.srx", testSRX)
	b := writeTestFile(t, dir, "b.csv", "x\n1\n")

	_, _, err := execute(t, "compare", a, b)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
