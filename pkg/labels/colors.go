package labels

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var literalColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ColorTable maps symbolic color names to literal "#rrggbb" values
type ColorTable map[string]string

// NewColorTable validates a raw color table decoded from a label document.
// Every value must be a literal color, so symbols never chain.
func NewColorTable(raw map[string]any) (ColorTable, error) {
	var problems ConfigErrors
	table := make(ColorTable, len(raw))

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := fmt.Sprintf("colors.%s", name)
		value, ok := raw[name].(string)
		if !ok {
			problems.Add(field, fmt.Sprintf("%v", raw[name]), "color value must be a string")
			continue
		}
		if !IsLiteralColor(value) {
			problems.Add(field, value, "color value must be a literal color in #rrggbb form")
			continue
		}
		table[name] = value
	}

	if problems.HasErrors() {
		return nil, problems
	}
	return table, nil
}

// IsLiteralColor reports whether s is a "#rrggbb" color
func IsLiteralColor(s string) bool {
	return literalColor.MatchString(s)
}

// ResolveColor returns the literal color for raw. A table key is substituted
// exactly once; any other value must already be a literal color.
func ResolveColor(raw string, table ColorTable) (string, error) {
	if literal, ok := table[raw]; ok {
		if !IsLiteralColor(literal) {
			return "", &ConfigError{Field: "colors." + raw, Value: literal, Message: "color value must be a literal color in #rrggbb form"}
		}
		return literal, nil
	}

	if IsLiteralColor(raw) {
		return raw, nil
	}

	return "", &ConfigError{Field: "color", Value: raw, Message: "unknown color: not a #rrggbb literal or a name from the colors table"}
}

// colorsEqual compares two literal colors ignoring hex digit case
func colorsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "#"), strings.TrimPrefix(b, "#"))
}
