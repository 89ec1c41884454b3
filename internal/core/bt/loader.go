package bt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition describes a tree in JSON or YAML. Nodes are keyed by name and
// the key becomes the node name in the built tree.
type Definition struct {
	Root  string             `json:"root" yaml:"root"`
	Nodes map[string]NodeDef `json:"nodes" yaml:"nodes"`
}

type NodeDef struct {
	// Type is one of selector, sequence, parallel, invert, always_succeed,
	// always_fail, repeat, decorator or leaf.
	Type      string   `json:"type" yaml:"type"`
	Children  []string `json:"children,omitempty" yaml:"children,omitempty"`
	Child     string   `json:"child,omitempty" yaml:"child,omitempty"`
	Leaf      string   `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Decorator string   `json:"decorator,omitempty" yaml:"decorator,omitempty"`
	Params    Params   `json:"params,omitempty" yaml:"params,omitempty"`
}

func LoadJSON(r io.Reader) (*Definition, error) {
	var d Definition
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode tree definition: %w", err)
	}
	return &d, nil
}

func LoadYAML(r io.Reader) (*Definition, error) {
	var d Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode tree definition: %w", err)
	}
	return &d, nil
}

// LoadFile decodes a definition file, JSON for .json and YAML otherwise.
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

// Build creates the tree through a Builder. Every node must be referenced
// exactly once (the root not at all) and be reachable from the root.
func Build[C any](d *Definition, reg *Registry[C], opts ...Option) (*Tree[C], error) {
	if d.Root == "" {
		return nil, fmt.Errorf("tree definition without root: %w", ErrUnknownNode)
	}
	b := NewBuilder[C]()
	created := make(map[string]NodeID, len(d.Nodes))
	inProgress := make(map[string]bool)

	var build func(name string) (NodeID, error)
	build = func(name string) (NodeID, error) {
		if _, ok := created[name]; ok || inProgress[name] {
			return NoNode, fmt.Errorf("node %q referenced more than once: %w", name, ErrSharedChild)
		}
		nd, ok := d.Nodes[name]
		if !ok {
			return NoNode, fmt.Errorf("node %q: %w", name, ErrUnknownNode)
		}
		inProgress[name] = true
		defer delete(inProgress, name)

		children, err := nd.childNames(name)
		if err != nil {
			return NoNode, err
		}
		ids := make([]NodeID, 0, len(children))
		for _, ch := range children {
			id, err := build(ch)
			if err != nil {
				return NoNode, err
			}
			ids = append(ids, id)
		}

		id, err := addNode(b, reg, nd, name, ids)
		if err != nil {
			return NoNode, fmt.Errorf("node %q: %w", name, err)
		}
		created[name] = id
		return id, nil
	}

	root, err := build(d.Root)
	if err != nil {
		return nil, err
	}

	var unused []string
	for name := range d.Nodes {
		if _, ok := created[name]; !ok {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		errs := make([]error, len(unused))
		for i, name := range unused {
			errs[i] = fmt.Errorf("node %q: %w", name, ErrUnreachable)
		}
		return nil, errors.Join(errs...)
	}
	return b.Build(root, opts...)
}

func (nd NodeDef) childNames(name string) ([]string, error) {
	switch nd.Type {
	case "selector", "sequence", "parallel":
		if nd.Child != "" {
			return nil, fmt.Errorf("%s %q uses child, want children: %w", nd.Type, name, ErrInvalidArity)
		}
		return nd.Children, nil
	case "invert", "always_succeed", "always_fail", "repeat", "decorator":
		if nd.Child == "" || len(nd.Children) > 0 {
			return nil, fmt.Errorf("%s %q needs exactly one child: %w", nd.Type, name, ErrInvalidArity)
		}
		return []string{nd.Child}, nil
	case "leaf":
		if nd.Child != "" || len(nd.Children) > 0 {
			return nil, fmt.Errorf("leaf %q has children: %w", name, ErrInvalidArity)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("node %q has unsupported type %q: %w", name, nd.Type, ErrUnknownNode)
	}
}

func addNode[C any](b *Builder[C], reg *Registry[C], nd NodeDef, name string, ids []NodeID) (NodeID, error) {
	switch nd.Type {
	case "selector":
		return b.Selector(name, ids...), nil
	case "sequence":
		return b.Sequence(name, ids...), nil
	case "parallel":
		success, err := nd.Params.Int("success", len(ids))
		if err != nil {
			return NoNode, err
		}
		failure, err := nd.Params.Int("failure", 1)
		if err != nil {
			return NoNode, err
		}
		return b.Parallel(name, success, failure, ids...), nil
	case "invert":
		return b.Invert(name, ids[0]), nil
	case "always_succeed":
		return b.AlwaysSucceed(name, ids[0]), nil
	case "always_fail":
		return b.AlwaysFail(name, ids[0]), nil
	case "repeat":
		times, err := nd.Params.Int("times", 1)
		if err != nil {
			return NoNode, err
		}
		modeName, err := nd.Params.String("mode", "")
		if err != nil {
			return NoNode, err
		}
		mode, err := ParseRepeatMode(modeName)
		if err != nil {
			return NoNode, err
		}
		return b.Repeat(name, times, mode, ids[0]), nil
	case "decorator":
		beh, err := reg.NewDecorator(nd.Decorator, nd.Params)
		if err != nil {
			return NoNode, err
		}
		return b.add(KindDecorator, nd.Decorator, name, beh, ids[0]), nil
	default:
		beh, err := reg.NewLeaf(nd.Leaf, nd.Params)
		if err != nil {
			return NoNode, err
		}
		return b.add(KindLeaf, nd.Leaf, name, beh), nil
	}
}
