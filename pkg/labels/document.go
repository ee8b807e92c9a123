package labels

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// Format is the encoding of a label document
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatAuto):
		return FormatAuto, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	default:
		return "", &ConfigError{Field: "format", Value: s, Message: "format must be one of: auto, json, yaml"}
	}
}

// DetectFormat picks a format from the file extension, falling back to
// sniffing the first significant byte of the document.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yml", ".yaml":
		return FormatYAML
	}

	if trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff"); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// labelEntry is a label as written in a document, before color resolution
type labelEntry struct {
	Name        string
	Color       string
	Description string
	Renamed     string
}

// document is the format independent shape every parser produces
type document struct {
	Colors  map[string]any
	Labels  []labelEntry
	Ignores []string
}

// parser turns raw document bytes into a document
type parser interface {
	Parse(data []byte) (*document, error)
}

func parserFor(format Format) (parser, error) {
	switch format {
	case FormatJSON:
		return jsonParser{}, nil
	case FormatYAML:
		return yamlParser{}, nil
	default:
		return nil, &ConfigError{Field: "format", Value: string(format), Message: "unsupported document format"}
	}
}

//go:embed schema/json.schema.json
var jsonDocumentSchema []byte

//go:embed schema/yaml.schema.json
var yamlDocumentSchema []byte

var (
	compiledJSONSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
		return compileSchema("labels-json.schema.json", jsonDocumentSchema)
	})
	compiledYAMLSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
		return compileSchema("labels-yaml.schema.json", yamlDocumentSchema)
	})
)

func compileSchema(name string, raw []byte) (*jsonschema.Schema, error) {
	unmarshaled, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, unmarshaled); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return compiled, nil
}

// validateAgainst checks a JSON encoded document against a compiled schema
func validateAgainst(schema func() (*jsonschema.Schema, error), jsonData []byte) error {
	compiled, err := schema()
	if err != nil {
		return err
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return &ConfigError{Field: "document", Message: fmt.Sprintf("failed to parse JSON: %v", err)}
	}

	if err := compiled.Validate(instance); err != nil {
		return schemaProblems(err)
	}
	return nil
}

var schemaPrinter = message.NewPrinter(language.English)

// schemaProblems flattens a schema validation error into one ConfigError per leaf
func schemaProblems(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &ConfigError{Field: "document", Message: err.Error()}
	}

	var problems ConfigErrors
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.Join(e.InstanceLocation, ".")
			if field == "" {
				field = "document"
			}
			problems.Add(field, "", e.ErrorKind.LocalizedString(schemaPrinter))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return problems
}

// jsonParser reads documents whose labels are a mapping of name to label
type jsonParser struct{}

type jsonLabel struct {
	Color       string `json:"color"`
	Description string `json:"description"`
	Renamed     string `json:"renamed"`
}

func (jsonParser) Parse(data []byte) (*document, error) {
	if !json.Valid(data) {
		return nil, &ConfigError{Field: "document", Message: "document is not valid JSON"}
	}
	if err := validateAgainst(compiledJSONSchema, data); err != nil {
		return nil, err
	}

	var raw struct {
		Colors  map[string]any  `json:"colors"`
		Labels  json.RawMessage `json:"labels"`
		Ignores []string        `json:"ignores"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Field: "document", Message: fmt.Sprintf("failed to parse JSON: %v", err)}
	}

	entries, err := decodeOrderedLabels(raw.Labels)
	if err != nil {
		return nil, &ConfigError{Field: "labels", Message: fmt.Sprintf("failed to parse JSON: %v", err)}
	}

	return &document{Colors: raw.Colors, Labels: entries, Ignores: raw.Ignores}, nil
}

// decodeOrderedLabels walks the labels object token by token so that the
// resulting entries keep document order.
func decodeOrderedLabels(raw json.RawMessage) ([]labelEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var entries []labelEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var label jsonLabel
		if err := dec.Decode(&label); err != nil {
			return nil, fmt.Errorf("label %q: %w", name, err)
		}
		entries = append(entries, labelEntry{
			Name:        name,
			Color:       label.Color,
			Description: label.Description,
			Renamed:     label.Renamed,
		})
	}
	return entries, nil
}

// yamlParser reads documents whose labels are a list of records
type yamlParser struct{}

type yamlLabel struct {
	Name        string `yaml:"name"`
	Color       string `yaml:"color"`
	Description string `yaml:"description"`
	Renamed     string `yaml:"renamed"`
}

type yamlDocument struct {
	Colors  map[string]any `yaml:"colors"`
	Labels  []yamlLabel    `yaml:"labels"`
	Ignores []string       `yaml:"ignores"`
}

func (yamlParser) Parse(data []byte) (*document, error) {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return nil, &ConfigError{Field: "document", Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	if err := validateAgainst(compiledYAMLSchema, jsonData); err != nil {
		return nil, err
	}

	var raw yamlDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Field: "document", Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}

	entries := make([]labelEntry, 0, len(raw.Labels))
	for _, label := range raw.Labels {
		entries = append(entries, labelEntry(label))
	}

	return &document{Colors: raw.Colors, Labels: entries, Ignores: raw.Ignores}, nil
}
