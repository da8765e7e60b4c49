// Package assetbuild runs the builders named in an asset list.
package assetbuild

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidList reports an asset list that cannot be built.
var ErrInvalidList = errors.New("invalid asset list")

// Job is one entry of an asset list.
type Job struct {
	Type   string   `yaml:"type"`
	Source string   `yaml:"source"`
	Target string   `yaml:"target"`
	Args   []string `yaml:"args,omitempty"`
}

// List is the asset list document:
//
//	assets:
//	  - type: mesh
//	    source: meshes/cube.lua
//	    target: built/cube.mesh
//	    args: [-winding, mirrored]
type List struct {
	Assets []Job `yaml:"assets"`
}

// ParseList decodes and validates an asset list.
func ParseList(data []byte) (*List, error) {
	var list List
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&list); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidList, err)
	}

	for i, job := range list.Assets {
		switch {
		case job.Type == "":
			return nil, fmt.Errorf("%w: asset %d has no type", ErrInvalidList, i+1)
		case job.Source == "":
			return nil, fmt.Errorf("%w: asset %d has no source", ErrInvalidList, i+1)
		case job.Target == "":
			return nil, fmt.Errorf("%w: asset %d (%s) has no target", ErrInvalidList, i+1, job.Source)
		}
	}
	return &list, nil
}

// LoadList reads an asset list. Relative sources and targets are resolved
// against the list's directory.
func LoadList(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading asset list: %w", err)
	}
	list, err := ParseList(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range list.Assets {
		list.Assets[i].Source = resolve(base, list.Assets[i].Source)
		list.Assets[i].Target = resolve(base, list.Assets[i].Target)
	}
	return list, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
