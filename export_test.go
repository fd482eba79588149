package redgreen

// Internal functions exposed for tests.
var (
	ClassifyUpdate    = classifyUpdate
	FingerprintRun    = fingerprintRun
	FailingTestNames  = failingTestNames
	ClassifyStyleOnly = classifyStyleOnly
	SummarizeRun      = summarizeRun
	ChangelogEntry    = changelogEntry
	WaitWithCancel    = waitWithCancel
	SkippedRunResult  = skippedRunResult
)
