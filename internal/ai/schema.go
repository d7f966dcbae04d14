package ai

import (
	"fmt"
	"slices"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"google.golang.org/genai"
)

var geminiTypes = map[string]genai.Type{
	openapi3.TypeObject:  genai.TypeObject,
	openapi3.TypeArray:   genai.TypeArray,
	openapi3.TypeString:  genai.TypeString,
	openapi3.TypeInteger: genai.TypeInteger,
	openapi3.TypeNumber:  genai.TypeNumber,
	openapi3.TypeBoolean: genai.TypeBoolean,
}

// toGeminiSchema converts a contract schema into the Gemini response schema dialect
func toGeminiSchema(s *openapi3.Schema) (*genai.Schema, error) {
	if s == nil {
		return nil, nil
	}

	types := s.Type.Slice()
	if len(types) != 1 {
		return nil, fmt.Errorf("schema must declare exactly one type, got %v", types)
	}
	typ, ok := geminiTypes[types[0]]
	if !ok {
		return nil, fmt.Errorf("unsupported schema type %q", types[0])
	}

	out := &genai.Schema{
		Type:        typ,
		Description: s.Description,
		Minimum:     s.Min,
		Maximum:     s.Max,
		Required:    s.Required,
	}

	for _, v := range s.Enum {
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("enum value %v is not a string", v)
		}
		out.Enum = append(out.Enum, str)
	}

	if s.Items != nil {
		items, err := toGeminiSchema(s.Items.Value)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = items
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		var optional []string
		for name, ref := range s.Properties {
			prop, err := toGeminiSchema(ref.Value)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			out.Properties[name] = prop
			if !slices.Contains(s.Required, name) {
				optional = append(optional, name)
			}
		}
		// required fields keep their declared order
		sort.Strings(optional)
		out.PropertyOrdering = append(slices.Clone(s.Required), optional...)
	}

	return out, nil
}
