package labels

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultYAMLPath is the label document read when no path is given
	DefaultYAMLPath = ".github/labels.yml"
	// DefaultJSONPath is the JSON counterpart of DefaultYAMLPath
	DefaultJSONPath = ".github/labels.json"
)

// DefaultPath returns the conventional document path for a format
func DefaultPath(format Format) string {
	if format == FormatJSON {
		return DefaultJSONPath
	}
	return DefaultYAMLPath
}

// ResolvePath returns path, or the default path for format when path is
// empty. With FormatAuto the first existing default file wins.
func ResolvePath(path string, format Format) string {
	if path != "" {
		return path
	}
	if format != FormatAuto {
		return DefaultPath(format)
	}
	for _, candidate := range []string{DefaultYAMLPath, ".github/labels.yaml", DefaultJSONPath} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return DefaultYAMLPath
}

// LoadFile reads and loads a label document from disk
func LoadFile(path string, format Format) (*DesiredState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "file", Value: path, Message: fmt.Sprintf("failed to read label file: %v", err)}
	}
	if format == FormatAuto {
		format = DetectFormat(path, data)
	}
	return Load(data, format)
}

// Load parses a label document and normalizes it into a DesiredState
func Load(data []byte, format Format) (*DesiredState, error) {
	if format == FormatAuto || format == "" {
		format = DetectFormat("", data)
	}

	p, err := parserFor(format)
	if err != nil {
		return nil, err
	}

	doc, err := p.Parse(data)
	if err != nil {
		return nil, err
	}

	return normalize(doc)
}

// normalize resolves colors and rename links and checks name uniqueness
func normalize(doc *document) (*DesiredState, error) {
	var problems ConfigErrors

	colors, err := NewColorTable(doc.Colors)
	if err != nil {
		appendProblems(&problems, err)
		colors = ColorTable{}
	}

	state := &DesiredState{
		Labels:  make([]LabelSpec, 0, len(doc.Labels)),
		Ignores: NewIgnoreSet(),
		Colors:  colors,
	}

	seen := make(map[string]string, len(doc.Labels))
	for i, entry := range doc.Labels {
		field := fmt.Sprintf("labels[%d]", i)
		if strings.TrimSpace(entry.Name) == "" {
			problems.Add(field+".name", entry.Name, "label name is required")
			continue
		}
		field = fmt.Sprintf("labels[%d] (%s)", i, entry.Name)

		color, err := ResolveColor(entry.Color, colors)
		if err != nil {
			problems.Add(field+".color", entry.Color, "unknown color: not a #rrggbb literal or a name from the colors table")
		}

		if first, dup := seen[nameKey(entry.Name)]; dup {
			problems.Add(field+".name", entry.Name, fmt.Sprintf("the name is already used by label %q", first))
			continue
		}
		seen[nameKey(entry.Name)] = entry.Name

		spec := LabelSpec{
			Name:        entry.Name,
			Color:       color,
			Description: entry.Description,
		}
		if entry.Renamed != "" && entry.Renamed != entry.Name {
			spec.RenamedFrom = entry.Renamed
		}
		state.Labels = append(state.Labels, spec)
	}

	for i, name := range doc.Ignores {
		if strings.TrimSpace(name) == "" {
			problems.Add(fmt.Sprintf("ignores[%d]", i), name, "ignored label name cannot be empty")
			continue
		}
		state.Ignores[nameKey(name)] = struct{}{}
	}

	if problems.HasErrors() {
		return nil, problems
	}
	return state, nil
}

func appendProblems(problems *ConfigErrors, err error) {
	var many ConfigErrors
	var one *ConfigError
	switch {
	case errors.As(err, &many):
		*problems = append(*problems, many...)
	case errors.As(err, &one):
		*problems = append(*problems, *one)
	default:
		problems.Add("document", "", err.Error())
	}
}
