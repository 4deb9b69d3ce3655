package policy

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"pyglue-generator/internal/diagnostic"
)

// Default marker pairs.
const (
	DefaultGlueStart = "// <autogen:glue>"
	DefaultGlueEnd   = "// </autogen:glue>"
	DefaultStubStart = "# <autogen:stub>"
	DefaultStubEnd   = "# </autogen:stub>"
)

const (
	defaultVersion   = "1.0.0"
	defaultModuleVar = "m"
	defaultTimeout   = "30s"

	// Names of integer parameters that carry the element count of the
	// preceding buffer pointer.
	defaultCountPattern = `^(count|size|n|len|length|num|\w+_count|\w+_size|\w+Count|\w+Size)$`
)

// LoadFile loads and parses a policy file. Files ending in .toml are read as
// TOML, everything else as YAML.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read policy file %s", path)
	}

	var pf *File
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		pf, err = ParseTOML(data)
	} else {
		pf, err = Parse(data)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "policy file %s", path)
	}

	return pf, nil
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var raw map[string]any

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, diagnostic.Mark(errors.Wrap(err, "failed to parse policy YAML"), diagnostic.KindPolicyValidation)
	}

	if err := checkDocument(raw); err != nil {
		return nil, err
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, diagnostic.Mark(errors.Wrap(err, "failed to decode policy YAML"), diagnostic.KindPolicyValidation)
	}

	ApplyDefaults(&pf)

	return &pf, nil
}

// ParseTOML parses TOML data into a File.
func ParseTOML(data []byte) (*File, error) {
	var raw map[string]any

	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, diagnostic.Mark(errors.Wrap(err, "failed to parse policy TOML"), diagnostic.KindPolicyValidation)
	}

	if err := checkDocument(raw); err != nil {
		return nil, err
	}

	var pf File
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&pf); err != nil {
		return nil, diagnostic.Mark(errors.Wrap(err, "failed to decode policy TOML"), diagnostic.KindPolicyValidation)
	}

	ApplyDefaults(&pf)

	return &pf, nil
}

// checkDocument runs the unknown-key check and then the JSON schema over the
// generic decoding of a document.
func checkDocument(raw map[string]any) error {
	if raw == nil {
		raw = map[string]any{}
	}

	keys := &diagnostic.Diagnostics{}
	checkKeys("", raw, knownKeys, keys)

	if err := keys.Error(); err != nil {
		return errors.WithHint(err, "see the schema overview in the policy package documentation")
	}

	return checkSchema(raw)
}

// ApplyDefaults fills in default values for optional fields.
func ApplyDefaults(pf *File) {
	if pf.Version == "" {
		pf.Version = defaultVersion
	}

	a := &pf.Adapt
	if a.Variadic == nil {
		a.Variadic = []MatchRuleDef{{}}
	}

	if a.FixedArray == nil {
		a.FixedArray = []MatchRuleDef{{}}
	}

	if a.Boxed == nil {
		a.Boxed = []MatchRuleDef{{}}
	}

	if a.Buffer == nil {
		a.Buffer = []MatchRuleDef{{Count: defaultCountPattern}}
	}

	if a.SizeofDefault == nil {
		a.SizeofDefault = []MatchRuleDef{{}}
	}

	if pf.Naming.SnakeCase == nil {
		pf.Naming.SnakeCase = ptr(true)
	}

	if pf.Naming.StripEnumPrefix == nil {
		pf.Naming.StripEnumPrefix = ptr(true)
	}

	if pf.Comments.Regions == nil {
		pf.Comments.Regions = ptr(true)
	}

	if pf.Output.ModuleVar == "" {
		pf.Output.ModuleVar = defaultModuleVar
	}

	defaultMarkers(&pf.Output.GlueMarkers, DefaultGlueStart, DefaultGlueEnd)
	defaultMarkers(&pf.Output.StubMarkers, DefaultStubStart, DefaultStubEnd)

	if pf.Parser.Timeout == "" {
		pf.Parser.Timeout = defaultTimeout
	}

	for i := range pf.Templates {
		if pf.Templates[i].Kind == "" {
			pf.Templates[i].Kind = TemplateFunction
		}

		if pf.Templates[i].Naming == "" {
			pf.Templates[i].Naming = NamingSnakeSuffix
		}
	}
}

func defaultMarkers(m *Markers, start, end string) {
	if m.Start == "" {
		m.Start = start
	}

	if m.End == "" {
		m.End = end
	}
}

func ptr[T any](v T) *T {
	return &v
}

// Marshal serializes a File to YAML.
func Marshal(pf *File) ([]byte, error) {
	return yaml.Marshal(pf)
}

// canonical returns the deterministic JSON encoding used for hashing.
func canonical(pf *File) []byte {
	data, err := json.Marshal(pf)
	if err != nil {
		// File only holds strings, bools, ints and maps with string keys.
		panic(errors.Wrap(err, "encoding policy"))
	}

	return data
}
