package redgreen

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

//go:embed templates/writetest_prompt.md
var writeTestPromptTemplate string

//go:embed templates/implement_prompt.md
var implementPromptTemplate string

//go:embed templates/fix_prompt.md
var fixPromptTemplate string

//go:embed templates/guidance_prompt.md
var guidancePromptTemplate string

var (
	writeTestTmpl *template.Template
	implementTmpl *template.Template
	fixTmpl       *template.Template
	guidanceTmpl  *template.Template
)

func init() {
	writeTestTmpl = template.Must(template.New("writetest").Parse(writeTestPromptTemplate))
	implementTmpl = template.Must(template.New("implement").Parse(implementPromptTemplate))
	fixTmpl = template.Must(template.New("fix").Parse(fixPromptTemplate))
	guidanceTmpl = template.Must(template.New("guidance").Parse(guidancePromptTemplate))
}

type writeTestTemplateData struct {
	Instruction string
}

type implementTemplateData struct {
	Instruction string
	RedSummary  string
}

type fixTemplateData struct {
	Instruction    string
	Attempt        int
	MaxAttempts    int
	FailureSummary string
}

type guidanceTemplateData struct {
	Instruction    string
	Guidance       string
	FailureSummary string
}

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt template", goerr.V("template", tmpl.Name()))
	}
	return buf.String(), nil
}

// summarizeRun renders a run result as the human-readable failure summary
// embedded in implement/fix prompts: status, failing counts, per-workspace
// coverage and uncovered line references.
func summarizeRun(result *RunResult) string {
	if result == nil {
		return "No test run result available."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Test run status: %s\n", result.Status)
	fmt.Fprintf(&b, "Failing tests: %d\n", result.Summary.FailedTests)

	if names := failingTestNames(result); len(names) > 0 {
		b.WriteString("Failures:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	gate := "failed"
	switch {
	case result.Summary.Gate.Skipped:
		gate = "skipped"
	case result.Summary.Gate.Passed:
		gate = "passed"
	}
	fmt.Fprintf(&b, "Coverage gate: %s (lines %.1f%%, statements %.1f%%, functions %.1f%%, branches %.1f%%)\n",
		gate,
		result.Summary.Totals.Lines,
		result.Summary.Totals.Statements,
		result.Summary.Totals.Functions,
		result.Summary.Totals.Branches)

	if len(result.Summary.Uncovered) > 0 {
		b.WriteString("Uncovered lines:\n")
		for _, ref := range result.Summary.Uncovered {
			fmt.Fprintf(&b, "- %s:%d\n", ref.File, ref.Line)
		}
	}

	for _, ws := range result.WorkspaceRuns {
		fmt.Fprintf(&b, "Workspace %s: %s (lines %.1f%%)\n", ws.Workspace, ws.Status, ws.Totals.Lines)
	}

	return b.String()
}

// stylePattern and behaviorPattern classify style-only steps. A step counts
// as style-only when it talks about presentation and does not mention
// behavior, so it is exempt from the test-first requirement.
var (
	stylePattern    = regexp.MustCompile(`(?i)\b(css|stylesheet|styling|style|restyle|cosmetic|colou?r scheme|font|padding|margin|theme)\b`)
	behaviorPattern = regexp.MustCompile(`(?i)\b(logic|behaviou?r|test|api|endpoint|function|validat|handler|state|bug|fix)\b`)
)

func classifyStyleOnly(instruction string) bool {
	return stylePattern.MatchString(instruction) && !behaviorPattern.MatchString(instruction)
}

// changelogEntry derives the auto-generated changelog line from the
// top-level prompt.
func changelogEntry(prompt string) string {
	entry := strings.TrimSpace(prompt)
	if entry == "" {
		return ""
	}
	entry = strings.ToUpper(entry[:1]) + entry[1:]
	if !strings.HasSuffix(entry, ".") {
		entry += "."
	}
	return "- " + entry
}
