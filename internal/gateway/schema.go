package gateway

import (
	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"

	genai "google.golang.org/genai"
)

var schemeFields = []string{
	"id", "name", "provider", "description", "benefits", "eligibilityCriteria",
	"matchScore", "applicationMethod", "category", "officialLink",
}

// responseSchema is sent with the request so the model answers with a
// JSON array of schemes.
func responseSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	strList := func() *genai.Schema { return &genai.Schema{Type: genai.TypeArray, Items: str()} }

	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"id":                  str(),
				"name":                str(),
				"provider":            str(),
				"description":         str(),
				"benefits":            strList(),
				"eligibilityCriteria": strList(),
				"matchScore":          {Type: genai.TypeInteger},
				"applicationMethod":   {Type: genai.TypeString, Enum: methodValues()},
				"category":            {Type: genai.TypeString, Enum: categoryValues()},
				"officialLink":        str(),
			},
			Required: schemeFields,
		},
	}
}

// validationSchema is the JSON Schema document the raw answer is checked
// against before decoding. Unlike responseSchema it also bounds matchScore
// and rejects empty strings and lists.
func validationSchema() map[string]any {
	nonEmpty := map[string]any{"type": "string", "minLength": 1}
	list := map[string]any{
		"type":     "array",
		"minItems": 1,
		"items":    map[string]any{"type": "string"},
	}

	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":                  nonEmpty,
				"name":                nonEmpty,
				"provider":            map[string]any{"type": "string"},
				"description":         map[string]any{"type": "string"},
				"benefits":            list,
				"eligibilityCriteria": list,
				"matchScore": map[string]any{
					"type":    "integer",
					"minimum": domain.MinMatchScore,
					"maximum": domain.MaxMatchScore,
				},
				"applicationMethod": map[string]any{"type": "string", "enum": toAny(methodValues())},
				"category":          map[string]any{"type": "string", "enum": toAny(categoryValues())},
				"officialLink":      nonEmpty,
			},
			"required": toAny(schemeFields),
		},
	}
}

func methodValues() []string {
	out := make([]string, len(domain.ApplicationMethods))
	for i, m := range domain.ApplicationMethods {
		out[i] = string(m)
	}
	return out
}

func categoryValues() []string {
	out := make([]string, len(domain.SchemeCategories))
	for i, c := range domain.SchemeCategories {
		out[i] = string(c)
	}
	return out
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
