package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// maxErrorInput bounds how much model output is quoted in parse errors.
const maxErrorInput = 200

var schemaCache sync.Map // reflect.Type -> *jsonschema.Schema

// GenerateSchema returns the JSON schema of the type of value, for example
// the concept list of one text unit or a grading verdict. Pointers are
// dereferenced. Schemas are cached per type since every unit of an
// extraction asks for the same one.
func GenerateSchema(value any) any {
	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := schemaCache.Load(t); ok {
		return cached
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(reflect.New(t).Interface())

	actual, _ := schemaCache.LoadOrStore(t, schema)
	return actual
}

// UnmarshalFlexible decodes structured model output into out. Besides plain
// JSON it accepts output wrapped in a markdown code fence, JSON encoded
// twice as a string, and JSON that jsonrepair can fix (unquoted keys,
// trailing commas, missing closing brackets).
func UnmarshalFlexible(input string, out any) error {
	input = cleanModelOutput(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var inner string
	if err := json.Unmarshal([]byte(input), &inner); err == nil {
		inner = cleanModelOutput(inner)
		if err := json.Unmarshal([]byte(inner), out); err == nil {
			return nil
		}
		input = inner
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w (input: %s)", err, truncate(input))
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: %w (repaired: %s)", err, truncate(repaired))
	}
	return nil
}

// cleanModelOutput trims whitespace, a surrounding ``` fence and a doubled
// opening brace, which some models emit before the actual object.
func cleanModelOutput(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}

	if strings.HasPrefix(s, "{") {
		if rest := strings.TrimSpace(s[1:]); strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

func truncate(s string) string {
	if len(s) <= maxErrorInput {
		return s
	}
	return s[:maxErrorInput] + "..."
}
