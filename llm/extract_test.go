package llm_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/redgreen/llm"
)

func TestExtractJSON(t *testing.T) {
	cases := map[string]struct {
		input string
		want  string
	}{
		"bare object": {
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		"code fence with language": {
			input: "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		"code fence without language": {
			input: "```\n[1, 2]\n```",
			want:  `[1, 2]`,
		},
		"prose around object": {
			input: `Sure! Here you go: {"a": 1} Hope that helps.`,
			want:  `{"a": 1}`,
		},
		"braces inside strings": {
			input: `{"text": "a { brace } inside"} trailing`,
			want:  `{"text": "a { brace } inside"}`,
		},
		"escaped quotes inside strings": {
			input: `{"text": "she said \"hi\""} extra`,
			want:  `{"text": "she said \"hi\""}`,
		},
		"array before object": {
			input: `[{"a": 1}] and {"b": 2}`,
			want:  `[{"a": 1}]`,
		},
		"no JSON at all": {
			input: "just words",
			want:  "just words",
		},
		"truncated object kept whole": {
			input: `{"a": 1, "b":`,
			want:  `{"a": 1, "b":`,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			gt.Equal(t, llm.ExtractJSON(tc.input), tc.want)
		})
	}
}
