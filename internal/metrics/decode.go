package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"fieldpulse/internal/pkg/convert"
)

// documentSchema only pins the root shape; individual fields are read leniently.
const documentSchema = `{"type": "object"}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("metrics.schema.json", strings.NewReader(documentSchema)); err != nil {
		panic(fmt.Sprintf("metrics schema: %v", err))
	}
	schema, err := compiler.Compile("metrics.schema.json")
	if err != nil {
		panic(fmt.Sprintf("metrics schema: %v", err))
	}
	return schema
}

// Decode parses a metrics document. Numeric fields accept numbers or numeric
// strings; fields of the wrong shape are treated as absent.
func Decode(raw []byte) (*Metrics, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("metrics document is empty")
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("metrics document is not valid json")
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode metrics document: %w", err)
	}
	if err := compiledSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("metrics document rejected: %w", err)
	}

	doc := gjson.ParseBytes(raw)
	m := &Metrics{}
	if labels := doc.Get("labels"); labels.IsArray() {
		labels.ForEach(func(_, v gjson.Result) bool {
			m.Labels = append(m.Labels, v.String())
			return true
		})
	}
	if engagement := doc.Get("engagement"); engagement.IsArray() {
		engagement.ForEach(func(_, v gjson.Result) bool {
			m.Engagement = append(m.Engagement, looseFloat(v))
			return true
		})
	}
	if segments := doc.Get("topSegments"); segments.IsArray() {
		segments.ForEach(func(_, v gjson.Result) bool {
			seg := Segment{Rate: looseFloat(v.Get("rate"))}
			if name := v.Get("name"); name.Type == gjson.String || name.Type == gjson.Number {
				seg.Name = strings.TrimSpace(name.String())
			}
			m.TopSegments = append(m.TopSegments, seg)
			return true
		})
	}
	m.FarmerReadRate = looseFloat(doc.Get("farmerReadRate"))
	m.ActiveSegments = convert.ToInt(looseFloat(doc.Get("activeSegments")))
	m.UpdatesSent = convert.ToInt(looseFloat(doc.Get("updatesSent")))
	return m, nil
}

func looseFloat(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return convert.ToFloat64(v.Num)
	case gjson.String:
		return convert.ToFloat64(v.Str)
	default:
		return 0
	}
}
