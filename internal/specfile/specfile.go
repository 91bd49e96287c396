// Package specfile loads rotation test specs from disk for offline tooling.
package specfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stemsi/exstem-rotation/internal/qti"
	"github.com/stemsi/exstem-rotation/internal/rotation"
)

// Load reads a test spec from an assessment-test XML file (.xml) or a YAML
// file (.yaml, .yml). The result is validated before it is returned.
func Load(path string) (*rotation.TestSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}

	var spec *rotation.TestSpec
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xml":
		test, err := qti.ParseBytes(raw)
		if err != nil {
			return nil, err
		}
		spec = &test.Spec
	case ".yaml", ".yml":
		spec, err = DecodeYAML(raw)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported spec file extension %q", ext)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// DecodeYAML decodes the YAML form:
//
//	sections:
//	  - identifier: core
//	    shuffle: true
//	    select: 3
//	    items: [c1, c2, c3, c4]
//
// Unknown keys are rejected.
func DecodeYAML(raw []byte) (*rotation.TestSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var spec rotation.TestSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode yaml spec: %w", err)
	}
	return &spec, nil
}
