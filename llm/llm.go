// Package llm holds the plumbing shared by the LLM-backed planner and
// editor adapters: prompt rendering, JSON extraction from model output,
// and schema validation of generated plans.
package llm

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/redgreen"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed templates/plan_prompt.md
var planPromptTemplate string

//go:embed templates/plan_schema.json
var planSchemaJSON string

//go:embed templates/edit_prompt.md
var editPromptTemplate string

var (
	planTmpl   *template.Template
	editTmpl   *template.Template
	planSchema *jsonschema.Schema
)

func init() {
	planTmpl = template.Must(template.New("plan").Parse(planPromptTemplate))
	editTmpl = template.Must(template.New("edit").Parse(editPromptTemplate))

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(planSchemaJSON))
	if err != nil {
		panic("failed to load plan schema: " + err.Error())
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("plan_schema.json", doc); err != nil {
		panic("failed to load plan schema: " + err.Error())
	}
	schema, err := compiler.Compile("plan_schema.json")
	if err != nil {
		panic("failed to compile plan schema: " + err.Error())
	}
	planSchema = schema
}

type planTemplateData struct {
	Goal string
}

type editTemplateData struct {
	Instruction string
}

// PlanPrompt renders the planner prompt for the given top-level goal.
func PlanPrompt(goal string) (string, error) {
	var buf bytes.Buffer
	if err := planTmpl.Execute(&buf, planTemplateData{Goal: goal}); err != nil {
		return "", goerr.Wrap(err, "failed to render plan prompt")
	}
	return buf.String(), nil
}

// EditPrompt renders the editor prompt wrapping an engine instruction.
func EditPrompt(instruction string) (string, error) {
	var buf bytes.Buffer
	if err := editTmpl.Execute(&buf, editTemplateData{Instruction: instruction}); err != nil {
		return "", goerr.Wrap(err, "failed to render edit prompt")
	}
	return buf.String(), nil
}

// ParsePlan extracts and validates a plan from raw model output. The output
// may wrap the JSON in markdown fences or surrounding prose. Schema
// violations and unparsable output report redgreen.ErrPlanning.
func ParsePlan(text string) (*redgreen.Plan, error) {
	raw := ExtractJSON(text)

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(redgreen.ErrPlanning, "plan output is not valid JSON", goerr.V("output", text))
	}

	if err := planSchema.Validate(doc); err != nil {
		return nil, goerr.Wrap(redgreen.ErrPlanning, "plan output violates schema", goerr.V("cause", err.Error()))
	}

	var plan redgreen.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, goerr.Wrap(redgreen.ErrPlanning, "failed to decode plan", goerr.V("cause", err.Error()))
	}

	return &plan, nil
}

// ParseEditResult decodes an edit log from raw model output. Editors are
// free-form, so this is lenient: output that is not a valid edit log is
// preserved as a single note step instead of failing the edit.
func ParseEditResult(text string) *redgreen.EditResult {
	raw := ExtractJSON(text)

	var result redgreen.EditResult
	if err := json.Unmarshal([]byte(raw), &result); err == nil && len(result.Steps) > 0 {
		return &result
	}

	var steps []redgreen.EditStep
	if err := json.Unmarshal([]byte(raw), &steps); err == nil && len(steps) > 0 {
		return &redgreen.EditResult{Steps: steps}
	}

	note := strings.TrimSpace(text)
	if note == "" {
		return &redgreen.EditResult{}
	}
	return &redgreen.EditResult{
		Steps: []redgreen.EditStep{{Action: "note", Note: note}},
	}
}
