package manifest

// Vocabulary IRIs consumed during manifest resolution.
const (
	rdfNS    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	rdfsNS   = "http://www.w3.org/2000/01/rdf-schema#"
	mfNS     = "http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#"
	qtNS     = "http://www.w3.org/2001/sw/DataAccess/tests/test-query#"
	utNS     = "http://www.w3.org/2009/sparql/tests/test-update#"
	dawgNS   = "http://www.w3.org/2001/sw/DataAccess/tests/test-dawg#"
	sparqlNS = "http://www.w3.org/ns/sparql#"

	rdfType  = rdfNS + "type"
	rdfFirst = rdfNS + "first"
	rdfRest  = rdfNS + "rest"
	rdfNil   = rdfNS + "nil"

	rdfsComment = rdfsNS + "comment"

	mfInclude           = mfNS + "include"
	mfEntries           = mfNS + "entries"
	mfName              = mfNS + "name"
	mfAction            = mfNS + "action"
	mfResult            = mfNS + "result"
	mfResultCardinality = mfNS + "resultCardinality"
	mfLaxCardinality    = mfNS + "LaxCardinality"

	qtQuery     = qtNS + "query"
	qtData      = qtNS + "data"
	qtGraphData = qtNS + "graphData"

	utRequest   = utNS + "request"
	utData      = utNS + "data"
	utGraphData = utNS + "graphData"

	dawgApproval  = dawgNS + "approval"
	dawgApproved  = dawgNS + "Approved"
	dawgWithdrawn = dawgNS + "Withdrawn"

	sparqlEntailmentRegime = sparqlNS + "entailmentRegime"
)
