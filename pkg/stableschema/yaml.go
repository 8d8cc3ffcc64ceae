// Package stableschema loads StableContainer/Profile/plain-Container
// schemas from a YAML document, the way
// pk910-dynamic-ssz/spectests/init.go loads its preset specs with
// gopkg.in/yaml.v2. It exists for tooling (cmd/stablessz-inspect) that
// needs to describe schemas data-first rather than as Go literals.
package stableschema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/eth2030/sszstable/pkg/stablecontainer"
	"github.com/eth2030/sszstable/pkg/sszview"
)

// FieldDoc is one field declaration, shared by all three document
// kinds below. Optional is only meaningful inside a ProfileDoc field
// declared over a StableContainer base.
type FieldDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional"`
}

// StableContainerDoc describes a StableContainer[N] schema.
type StableContainerDoc struct {
	Capacity int        `yaml:"capacity"`
	Fields   []FieldDoc `yaml:"fields"`
}

// PlainContainerDoc describes a classic fixed-shape Container schema.
type PlainContainerDoc struct {
	Fields []FieldDoc `yaml:"fields"`
}

// ProfileDoc describes a Profile[B] schema. Base names a
// stable_containers entry directly, or a plain_containers entry
// prefixed with "plain:".
type ProfileDoc struct {
	Base   string     `yaml:"base"`
	Fields []FieldDoc `yaml:"fields"`
}

// Doc is the top-level shape of a schema YAML document.
type Doc struct {
	StableContainers map[string]StableContainerDoc `yaml:"stable_containers"`
	PlainContainers  map[string]PlainContainerDoc  `yaml:"plain_containers"`
	Profiles         map[string]ProfileDoc         `yaml:"profiles"`
}

// Set is the resolved, ready-to-use form of a Doc: every declared
// schema, keyed by name, with Profiles already bound to their Base.
type Set struct {
	StableContainers map[string]*stablecontainer.StableSchema
	PlainContainers  map[string]*sszview.ContainerSchema
	Profiles         map[string]*stablecontainer.ProfileSchema
}

// Load parses data as a schema Doc and resolves it into a Set.
func Load(data []byte) (*Set, error) {
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("stableschema: parse: %w", err)
	}
	return resolve(&doc)
}

func resolve(doc *Doc) (*Set, error) {
	set := &Set{
		StableContainers: make(map[string]*stablecontainer.StableSchema, len(doc.StableContainers)),
		PlainContainers:  make(map[string]*sszview.ContainerSchema, len(doc.PlainContainers)),
		Profiles:         make(map[string]*stablecontainer.ProfileSchema, len(doc.Profiles)),
	}

	// Stable containers may name other stable containers as field
	// types, so they resolve in passes: each pass builds every entry
	// whose field types are all known, until none is left or a pass
	// builds nothing (an unknown or cyclic type name).
	pending := make(map[string]StableContainerDoc, len(doc.StableContainers))
	for name, d := range doc.StableContainers {
		pending[name] = d
	}
	for len(pending) > 0 {
		before := len(pending)
		var typeErr error
		for name, d := range pending {
			fields := make([]stablecontainer.FieldSpec, len(d.Fields))
			resolved := true
			for i, f := range d.Fields {
				typ, err := resolveType(f.Type, set)
				if err != nil {
					typeErr = fmt.Errorf("stableschema: stable_containers.%s.%s: %w", name, f.Name, err)
					resolved = false
					break
				}
				fields[i] = stablecontainer.FieldSpec{Name: f.Name, Type: typ}
			}
			if !resolved {
				continue
			}
			schema, err := stablecontainer.NewStableSchema(d.Capacity, fields)
			if err != nil {
				return nil, fmt.Errorf("stableschema: stable_containers.%s: %w", name, err)
			}
			set.StableContainers[name] = schema
			delete(pending, name)
		}
		if len(pending) == before {
			return nil, typeErr
		}
	}

	for name, d := range doc.PlainContainers {
		fields := make([]sszview.ContainerField, len(d.Fields))
		for i, f := range d.Fields {
			typ, err := resolveType(f.Type, set)
			if err != nil {
				return nil, fmt.Errorf("stableschema: plain_containers.%s.%s: %w", name, f.Name, err)
			}
			fields[i] = sszview.ContainerField{Name: f.Name, Type: typ}
		}
		schema, err := sszview.NewContainerSchema(fields)
		if err != nil {
			return nil, fmt.Errorf("stableschema: plain_containers.%s: %w", name, err)
		}
		set.PlainContainers[name] = schema
	}

	// Profiles reference a stable_containers or plain_containers name,
	// so they resolve last.
	for name, d := range doc.Profiles {
		base, err := resolveBase(d.Base, set)
		if err != nil {
			return nil, fmt.Errorf("stableschema: profiles.%s: %w", name, err)
		}
		fields := make([]stablecontainer.ProfileFieldSpec, len(d.Fields))
		for i, f := range d.Fields {
			typ, err := resolveType(f.Type, set)
			if err != nil {
				return nil, fmt.Errorf("stableschema: profiles.%s.%s: %w", name, f.Name, err)
			}
			fields[i] = stablecontainer.ProfileFieldSpec{Name: f.Name, Type: typ, Optional: f.Optional}
		}
		schema, err := stablecontainer.NewProfileSchema(base, fields)
		if err != nil {
			return nil, fmt.Errorf("stableschema: profiles.%s: %w", name, err)
		}
		set.Profiles[name] = schema
	}

	return set, nil
}

func resolveBase(name string, set *Set) (stablecontainer.BaseSchema, error) {
	if rest, ok := strings.CutPrefix(name, "plain:"); ok {
		cs, ok := set.PlainContainers[rest]
		if !ok {
			return nil, fmt.Errorf("stableschema: unknown plain_containers base %q", rest)
		}
		return stablecontainer.PlainBase{Schema: cs}, nil
	}
	sc, ok := set.StableContainers[name]
	if !ok {
		return nil, fmt.Errorf("stableschema: unknown stable_containers base %q", name)
	}
	return sc, nil
}

// resolveType turns a type string into a Deserializer. Basic leaf
// types are named directly ("bool", "uint8", "uint16", "uint32",
// "uint64", "uint256", "bytes32"); "bytelist:N" is a ByteList with max
// length N; any other name is looked up among the stable_containers
// and profiles resolved so far, letting a StableContainer or Profile
// nest another as a field type. All stable_containers resolve before
// any profile, so a stable_containers field cannot name a profile.
func resolveType(name string, set *Set) (sszview.Deserializer, error) {
	switch name {
	case "bool":
		return sszview.BoolType, nil
	case "uint8":
		return sszview.Uint8Type, nil
	case "uint16":
		return sszview.Uint16Type, nil
	case "uint32":
		return sszview.Uint32Type, nil
	case "uint64":
		return sszview.Uint64Type, nil
	case "uint256":
		return sszview.Uint256Type, nil
	case "bytes32":
		return sszview.Bytes32Type, nil
	}
	if rest, ok := strings.CutPrefix(name, "bytelist:"); ok {
		maxLen, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("stableschema: bad bytelist max length %q: %w", rest, err)
		}
		return sszview.ByteListType{MaxLen: maxLen}, nil
	}
	if sc, ok := set.StableContainers[name]; ok {
		return stablecontainer.StableContainerType{Schema: sc}, nil
	}
	if p, ok := set.Profiles[name]; ok {
		return stablecontainer.ProfileType{Schema: p}, nil
	}
	return nil, fmt.Errorf("stableschema: unknown type %q", name)
}
