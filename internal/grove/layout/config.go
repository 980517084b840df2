package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// NodeDoc is the serialized form of a layout node: exactly one of Split or
// Pane is set.
type NodeDoc struct {
	Split *SplitDoc `yaml:"split,omitempty"`
	Pane  *PaneDoc  `yaml:"pane,omitempty"`
}

// SplitDoc serializes a split node.
type SplitDoc struct {
	Direction Direction  `yaml:"direction"`
	Children  []*NodeDoc `yaml:"children"`
}

// PaneDoc serializes a pane node.
type PaneDoc struct {
	Type          PaneType `yaml:"type"`
	CustomCommand string   `yaml:"custom_command,omitempty"`
}

// Config is a named, user-defined workspace layout.
type Config struct {
	ID   string   `yaml:"id"`
	Name string   `yaml:"name"`
	Root *NodeDoc `yaml:"root"`
}

// NewConfig captures a tree as a named config with a fresh id.
func NewConfig(name string, t *Tree) Config {
	return Config{
		ID:   uuid.NewString(),
		Name: name,
		Root: t.Doc(),
	}
}

// Doc serializes the tree into its recursive document form.
func (t *Tree) Doc() *NodeDoc {
	return t.doc(t.root)
}

func (t *Tree) doc(id NodeID) *NodeDoc {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	if n.Split {
		return &NodeDoc{Split: &SplitDoc{
			Direction: n.Dir,
			Children:  []*NodeDoc{t.doc(n.Children[0]), t.doc(n.Children[1])},
		}}
	}
	return &NodeDoc{Pane: &PaneDoc{Type: n.Pane, CustomCommand: n.CustomCommand}}
}

// Validate checks the document's structural invariants: every split has
// exactly two children, exactly one variant is set per node, and the depth
// and pane caps hold.
func (c Config) Validate() error {
	if c.Root == nil {
		return errors.New("layout: config has no root")
	}
	panes := 0
	if err := validateNode(c.Root, 0, 0, &panes); err != nil {
		return err
	}
	if panes > MaxPanes {
		return ErrPaneLimit
	}
	return nil
}

func validateNode(doc *NodeDoc, hDepth, vDepth int, panes *int) error {
	switch {
	case doc.Split != nil && doc.Pane != nil:
		return errors.New("layout: node is both split and pane")
	case doc.Split != nil:
		if len(doc.Split.Children) != 2 {
			return fmt.Errorf("layout: split has %d children, want 2", len(doc.Split.Children))
		}
		switch doc.Split.Direction {
		case Horizontal:
			hDepth++
			if hDepth > MaxHorizontalDepth {
				return ErrDepthExceeded
			}
		case Vertical:
			vDepth++
			if vDepth > MaxVerticalDepth {
				return ErrDepthExceeded
			}
		default:
			return fmt.Errorf("layout: unknown direction %q", doc.Split.Direction)
		}
		for _, child := range doc.Split.Children {
			if child == nil {
				return errors.New("layout: split has nil child")
			}
			if err := validateNode(child, hDepth, vDepth, panes); err != nil {
				return err
			}
		}
		return nil
	case doc.Pane != nil:
		switch doc.Pane.Type {
		case PaneAgent, PaneGrove, PaneFilePicker, PaneShell, PaneCustom:
		default:
			return fmt.Errorf("layout: unknown pane type %q", doc.Pane.Type)
		}
		*panes++
		return nil
	default:
		return errors.New("layout: empty node")
	}
}

// Build reconstructs a Tree from the config's document form. The config must
// validate first.
func (c Config) Build() (*Tree, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	t := &Tree{nodes: map[NodeID]*Node{}}
	t.root = t.build(c.Root, "")
	return t, nil
}

func (t *Tree) build(doc *NodeDoc, parent NodeID) NodeID {
	n := &Node{ID: newID(), Parent: parent}
	t.nodes[n.ID] = n
	if doc.Split != nil {
		n.Split = true
		n.Dir = doc.Split.Direction
		n.Children[0] = t.build(doc.Split.Children[0], n.ID)
		n.Children[1] = t.build(doc.Split.Children[1], n.ID)
		return n.ID
	}
	n.Pane = doc.Pane.Type
	n.CustomCommand = doc.Pane.CustomCommand
	return n.ID
}

type configFile struct {
	Layouts []Config `yaml:"layouts"`
}

// LoadConfigs reads the named layout configs from path. A missing file is an
// empty list. Configs that fail validation are dropped.
func LoadConfigs(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	valid := make([]Config, 0, len(file.Layouts))
	for _, cfg := range file.Layouts {
		if cfg.Validate() == nil {
			valid = append(valid, cfg)
		}
	}
	return valid, nil
}

// SaveConfigs writes the named layout configs to path.
func SaveConfigs(path string, configs []Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(configFile{Layouts: configs})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
