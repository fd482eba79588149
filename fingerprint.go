package redgreen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// failingTestPattern matches failing-test lines in run logs across common
// runner formats ("FAIL: TestX", "✕ renders button", "not ok 3 - name").
var failingTestPattern = regexp.MustCompile(`(?m)^\s*(?:---\s*)?(?:FAIL:?|✕|✗|not ok(?:\s+\d+\s*-)?)\s+(.+?)\s*(?:\(\d[^)]*\))?\s*$`)

// fingerprintRun reduces a run result to a canonical signature of its
// failure shape: failure count, per-workspace coverage totals and the
// normalized set of failing-test names. Results that differ only in
// timestamps or durations fingerprint identically. It never fails;
// malformed input degrades to a stable placeholder.
func fingerprintRun(result *RunResult) string {
	if result == nil {
		return "no-result"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "status=%s;failed=%d", result.Status, result.Summary.FailedTests)
	fmt.Fprintf(&b, ";totals=%s", coverageKey(result.Summary.Totals))

	for _, ws := range result.WorkspaceRuns {
		fmt.Fprintf(&b, ";ws:%s=%s/%s", ws.Workspace, ws.Status, coverageKey(ws.Totals))
	}

	if names := failingTestNames(result); len(names) > 0 {
		b.WriteString(";tests=" + strings.Join(names, ","))
	}

	return b.String()
}

func coverageKey(c Coverage) string {
	return fmt.Sprintf("%.1f/%.1f/%.1f/%.1f", c.Lines, c.Statements, c.Functions, c.Branches)
}

// failingTestNames extracts failing-test identifiers from workspace run
// logs, deduplicated and sorted so log ordering does not affect the
// fingerprint.
func failingTestNames(result *RunResult) []string {
	seen := map[string]struct{}{}
	for _, ws := range result.WorkspaceRuns {
		if ws.Log == "" {
			continue
		}
		for _, m := range failingTestPattern.FindAllStringSubmatch(ws.Log, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" {
				continue
			}
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
