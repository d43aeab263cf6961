package ai

import (
	"encoding/json"
	"strings"
	"testing"
)

type conceptOut struct {
	Label    string `json:"label"`
	Strength int    `json:"strength,omitempty"`
}

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  conceptOut
	}{
		{
			name:  "valid json object",
			input: `{"label":"Osmosis","strength":4}`,
			want:  conceptOut{Label: "Osmosis", Strength: 4},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{label: 'Osmosis'}`,
			want:  conceptOut{Label: "Osmosis"},
		},
		{
			name:  "trailing comma",
			input: `{"label":"Osmosis",}`,
			want:  conceptOut{Label: "Osmosis"},
		},
		{
			name:  "missing end bracket",
			input: `{"label":"Osmosis"`,
			want:  conceptOut{Label: "Osmosis"},
		},
		{
			name:  "stringified invalid object",
			input: `"{label: 'Osmosis'}"`,
			want:  conceptOut{Label: "Osmosis"},
		},
		{
			name:  "markdown code fence",
			input: "```json\n{\"label\": \"Osmosis\", \"strength\": 7}\n```",
			want:  conceptOut{Label: "Osmosis", Strength: 7},
		},
		{
			name:  "stringified fenced object",
			input: `"` + "```\\n{\\\"label\\\": \\\"Osmosis\\\"}\\n```" + `"`,
			want:  conceptOut{Label: "Osmosis"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"label\": \"Osmosis\"\n}\n",
			want:  conceptOut{Label: "Osmosis"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got conceptOut
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_Array(t *testing.T) {
	var got []conceptOut
	if err := UnmarshalFlexible(`[{label:'A'},{label:'B',}]`, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got) != 2 || got[0].Label != "A" || got[1].Label != "B" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want A,B", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	var got conceptOut
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatal("UnmarshalFlexible() expected error for unrecoverable input")
	}
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(&conceptOut{})

	raw, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(raw)
	for _, want := range []string{`"label"`, `"strength"`, `"additionalProperties":false`} {
		if !strings.Contains(s, want) {
			t.Errorf("schema %s does not contain %s", s, want)
		}
	}
}

func TestGenerateSchema_Cached(t *testing.T) {
	first := GenerateSchema(&conceptOut{})
	second := GenerateSchema(conceptOut{})
	if first != second {
		t.Fatal("GenerateSchema() should reuse the schema of a type")
	}
}

func TestUnmarshalFlexible_ErrorTruncatesInput(t *testing.T) {
	var got conceptOut
	err := UnmarshalFlexible(strings.Repeat("x", 1000), &got)
	if err == nil {
		t.Fatal("UnmarshalFlexible() expected error")
	}
	if len(err.Error()) > 2*maxErrorInput+100 {
		t.Fatalf("error message is %d bytes long", len(err.Error()))
	}
}

func TestApplyOptions(t *testing.T) {
	got := ApplyOptions(
		GenerateOptions{Model: "default", Temperature: 0.3},
		WithModel("override"),
		WithSystemPrompts("a", "b"),
		WithThinking("low"),
	)

	if got.Model != "override" || got.Temperature != 0.3 || got.Thinking != "low" || len(got.SystemPrompts) != 2 {
		t.Fatalf("ApplyOptions() = %+v", got)
	}
}

func TestMetricsRecorder(t *testing.T) {
	var r MetricsRecorder
	r.Add(ModelMetrics{InputTokens: 100, OutputTokens: 50, TotalTokens: 150, DurationMs: 500})
	r.Add(ModelMetrics{InputTokens: 10, OutputTokens: 40, TotalTokens: 50, DurationMs: 500})

	got := r.Snapshot()
	if got.TotalTokens != 200 || got.DurationMs != 1000 || got.TokenPerSecond != 200 {
		t.Fatalf("Snapshot() = %+v", got)
	}

	r.Reset()
	if got := r.Snapshot(); got != (ModelMetrics{}) {
		t.Fatalf("Snapshot() after Reset = %+v", got)
	}
}
