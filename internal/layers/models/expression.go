package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExpressionKind discriminates the color expression grammars the renderer
// accepts.
type ExpressionKind string

const (
	ExprDirect  ExpressionKind = "direct"
	ExprStep    ExpressionKind = "step"
	ExprMatch   ExpressionKind = "match"
	ExprUnknown ExpressionKind = "unknown"
)

// Stop is one threshold of a step expression.
type Stop struct {
	Threshold float64
	Color     string
}

// Case is one categorical arm of a match expression. Value is a string, a
// float64, or a []any of those when the arm matches several labels.
type Case struct {
	Value any
	Color string
}

// Label renders the case value the way a legend displays it.
func (c Case) Label() string {
	return formatValue(c.Value)
}

// Expression is a decoded color expression. Exactly the fields that belong to
// Kind are populated:
//
//	direct: Color
//	step:   Argument, Default, Stops (ascending thresholds)
//	match:  Argument, Cases, Default
//
// Argument is the input sub-expression as written, for example
// ["get", "score"], ["to-number", ["get", "score"]] or ["zoom"]. Input names
// the feature property when Argument is a plain get, and is "" otherwise.
// Built expressions may set only Input; Argument then defaults to a get.
//
// Shapes that do not decode keep their raw form so they can still be handed
// back to the renderer untouched.
type Expression struct {
	Kind     ExpressionKind
	Input    string
	Argument any
	Color    string
	Default string
	Stops   []Stop
	Cases   []Case

	raw any
}

// DirectColor builds a constant-color expression.
func DirectColor(color string) Expression {
	return Expression{Kind: ExprDirect, Color: color}
}

// ParseExpression decodes the renderer-native grammar:
//
//	"teal"
//	["step", ["get", field], default, t1, c1, t2, c2, ...]
//	["match", ["get", field], v1, c1, v2, c2, ..., default]
//
// The first array element is the discriminator. Anything else decodes to
// ExprUnknown; decoding never fails.
func ParseExpression(raw any) Expression {
	unknown := Expression{Kind: ExprUnknown, raw: raw}

	switch v := raw.(type) {
	case string:
		return DirectColor(v)
	case []any:
		if len(v) == 0 {
			return unknown
		}
		op, ok := v[0].(string)
		if !ok {
			return unknown
		}
		switch op {
		case "step":
			if e, ok := parseStep(v); ok {
				return e
			}
		case "match":
			if e, ok := parseMatch(v); ok {
				return e
			}
		}
	}
	return unknown
}

func parseStep(v []any) (Expression, bool) {
	if len(v) < 3 || (len(v)-3)%2 != 0 {
		return Expression{}, false
	}
	def, ok := v[2].(string)
	if !ok {
		return Expression{}, false
	}
	input, _ := parseGet(v[1])
	e := Expression{Kind: ExprStep, Input: input, Argument: v[1], Default: def}
	for i := 3; i < len(v); i += 2 {
		t, ok := toFloat(v[i])
		if !ok {
			return Expression{}, false
		}
		c, ok := v[i+1].(string)
		if !ok {
			return Expression{}, false
		}
		e.Stops = append(e.Stops, Stop{Threshold: t, Color: c})
	}
	return e, true
}

func parseMatch(v []any) (Expression, bool) {
	if len(v) < 5 || (len(v)-3)%2 != 0 {
		return Expression{}, false
	}
	def, ok := v[len(v)-1].(string)
	if !ok {
		return Expression{}, false
	}
	input, _ := parseGet(v[1])
	e := Expression{Kind: ExprMatch, Input: input, Argument: v[1], Default: def}
	for i := 2; i < len(v)-1; i += 2 {
		value, ok := caseValue(v[i])
		if !ok {
			return Expression{}, false
		}
		c, ok := v[i+1].(string)
		if !ok {
			return Expression{}, false
		}
		e.Cases = append(e.Cases, Case{Value: value, Color: c})
	}
	return e, true
}

// caseValue accepts a match label: a string, a number, or a non-empty array
// of strings and numbers.
func caseValue(v any) (any, bool) {
	switch cv := v.(type) {
	case string:
		return cv, true
	case []any:
		if len(cv) == 0 {
			return nil, false
		}
		labels := make([]any, 0, len(cv))
		for _, item := range cv {
			l, ok := caseValue(item)
			if !ok {
				return nil, false
			}
			if _, nested := l.([]any); nested {
				return nil, false
			}
			labels = append(labels, l)
		}
		return labels, true
	}
	f, ok := toFloat(v)
	return f, ok
}

func parseGet(v any) (string, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return "", false
	}
	if op, ok := arr[0].(string); !ok || op != "get" {
		return "", false
	}
	name, ok := arr[1].(string)
	return name, ok
}

// Compile renders the expression back into the renderer-native grammar.
func (e Expression) Compile() any {
	switch e.Kind {
	case ExprDirect:
		return e.Color
	case ExprStep:
		out := make([]any, 0, 3+2*len(e.Stops))
		out = append(out, "step", e.argument(), e.Default)
		for _, s := range e.Stops {
			out = append(out, s.Threshold, s.Color)
		}
		return out
	case ExprMatch:
		out := make([]any, 0, 3+2*len(e.Cases))
		out = append(out, "match", e.argument())
		for _, c := range e.Cases {
			out = append(out, c.Value, c.Color)
		}
		return append(out, e.Default)
	default:
		return e.raw
	}
}

func (e Expression) argument() any {
	if e.Argument != nil {
		return e.Argument
	}
	return []any{"get", e.Input}
}

// Evaluate returns the color the renderer paints for a feature whose input
// property has the given value. ok is false for unknown expressions and for
// values the expression cannot compare.
func (e Expression) Evaluate(value any) (color string, ok bool) {
	switch e.Kind {
	case ExprDirect:
		return e.Color, true
	case ExprStep:
		v, ok := toFloat(value)
		if !ok {
			return e.Default, false
		}
		color = e.Default
		for _, s := range e.Stops {
			if v < s.Threshold {
				break
			}
			color = s.Color
		}
		return color, true
	case ExprMatch:
		for _, c := range e.Cases {
			if sameValue(c.Value, value) {
				return c.Color, true
			}
		}
		return e.Default, true
	default:
		return "", false
	}
}

func (e Expression) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Compile())
}

func (e *Expression) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = ParseExpression(raw)
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func sameValue(a, b any) bool {
	if labels, ok := a.([]any); ok {
		for _, l := range labels {
			if sameValue(l, b) {
				return true
			}
		}
		return false
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if b, ok := v.(bool); ok {
		return strconv.FormatBool(b)
	}
	if labels, ok := v.([]any); ok {
		parts := make([]string, 0, len(labels))
		for _, l := range labels {
			parts = append(parts, formatValue(l))
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// FormatThreshold renders a numeric threshold without trailing zeros.
func FormatThreshold(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
