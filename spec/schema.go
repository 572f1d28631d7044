package spec

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
	"gopkg.in/yaml.v3"
)

//go:embed resources/packet.schema.yaml
var defaultSchemaBytes []byte

const (
	AttrTypeString   = "string"
	AttrTypeInt      = "int"
	AttrTypeBool     = "bool"
	AttrTypeDataType = "dataType"
)

// SchemaValidator 文档结构校验. 校验通过时返回 Ok 状态, 否则返回 SchemaError.
type SchemaValidator interface {
	Validate(doc *Document) ValidationState
}

type Schema struct {
	Root     string                  `yaml:"root"`
	Groups   map[string][]string     `yaml:"groups"`
	Elements map[string]*ElementRule `yaml:"elements"`
}

type ElementRule struct {
	Text       bool                      `yaml:"text"`
	Attributes map[string]*AttributeRule `yaml:"attributes"`
	Children   []*Particle               `yaml:"children"`
}

type AttributeRule struct {
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
}

type Particle struct {
	Ref    string `yaml:"ref"`
	Group  string `yaml:"group"`
	Min    int    `yaml:"min"`
	Repeat bool   `yaml:"repeat"`
}

var (
	defaultSchema     *Schema
	defaultSchemaErr  error
	defaultSchemaOnce sync.Once
)

// DefaultSchema 内置的 schema
func DefaultSchema() (*Schema, error) {
	defaultSchemaOnce.Do(func() {
		defaultSchema, defaultSchemaErr = LoadSchema(defaultSchemaBytes)
	})
	return defaultSchema, defaultSchemaErr
}

func LoadSchema(data []byte) (*Schema, error) {
	s := &Schema{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "load packet schema: %s", err.Error())
	}
	if err := s.Setup(); err != nil {
		return nil, errors.WithStack(err)
	}
	return s, nil
}

func LoadSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return LoadSchema(data)
}

// Setup 检查 schema 自身的引用是否完整
func (s *Schema) Setup() error {
	if s.Root == "" {
		return errors.New("packet schema: root not set")
	}
	if _, ok := s.Elements[s.Root]; !ok {
		return errors.Errorf("packet schema: root element '%s' not defined", s.Root)
	}
	for name, group := range s.Groups {
		for _, ref := range group {
			if _, ok := s.Elements[ref]; !ok {
				return errors.Errorf("packet schema: group '%s' references undefined element '%s'", name, ref)
			}
		}
	}
	for name, rule := range s.Elements {
		if rule == nil {
			s.Elements[name] = &ElementRule{}
			continue
		}
		for attr, ar := range rule.Attributes {
			if ar == nil {
				return errors.Errorf("packet schema: attribute '%s' of '%s' has no rule", attr, name)
			}
			switch ar.Type {
			case AttrTypeString, AttrTypeInt, AttrTypeBool, AttrTypeDataType:
			default:
				return errors.Errorf("packet schema: attribute '%s' of '%s' has unknown type '%s'", attr, name, ar.Type)
			}
		}
		for _, p := range rule.Children {
			if p == nil {
				return errors.Errorf("packet schema: '%s' has an empty child particle", name)
			}
			if p.Ref != "" {
				if _, ok := s.Elements[p.Ref]; !ok {
					return errors.Errorf("packet schema: '%s' references undefined element '%s'", name, p.Ref)
				}
			} else if _, ok := s.Groups[p.Group]; !ok {
				return errors.Errorf("packet schema: '%s' references undefined group '%s'", name, p.Group)
			}
		}
	}
	return nil
}

func (s *Schema) Validate(doc *Document) ValidationState {
	if doc == nil || doc.Root == nil {
		return schemaError(nil, "the document has no root element")
	}
	if doc.Root.Name != s.Root {
		return schemaError(doc.Root, fmt.Sprintf("the '%s' element is not declared", doc.Root.Name))
	}
	return s.validateElement(doc.Root)
}

func (s *Schema) validateElement(n *Node) ValidationState {
	rule, ok := s.Elements[n.Name]
	if !ok {
		return schemaError(n, fmt.Sprintf("the '%s' element is not declared", n.Name))
	}

	if st := s.validateAttributes(n, rule); !st.IsOk() {
		return st
	}

	children := n.ChildElements()
	if rule.Text {
		if len(children) > 0 {
			return schemaError(children[0], fmt.Sprintf("the element '%s' cannot contain child element '%s'", n.Name, children[0].Name))
		}
		return ValidationOk()
	}
	for _, c := range n.Children {
		if c.Type == TextNode {
			return schemaError(n, fmt.Sprintf("the element '%s' cannot contain text", n.Name))
		}
	}

	pos := 0
	for _, p := range rule.Children {
		count := 0
		for pos < len(children) && s.matches(p, children[pos].Name) {
			count++
			pos++
			if !p.Repeat {
				break
			}
		}
		if count < p.Min {
			if pos < len(children) {
				return schemaError(children[pos], fmt.Sprintf("the element '%s' has invalid child element '%s', expected %s", n.Name, children[pos].Name, s.describe(p)))
			}
			return schemaError(n, fmt.Sprintf("the element '%s' has incomplete content, expected %s", n.Name, s.describe(p)))
		}
	}
	if pos < len(children) {
		return schemaError(children[pos], fmt.Sprintf("the element '%s' has invalid child element '%s'", n.Name, children[pos].Name))
	}

	for _, c := range children {
		if st := s.validateElement(c); !st.IsOk() {
			return st
		}
	}
	return ValidationOk()
}

func (s *Schema) validateAttributes(n *Node, rule *ElementRule) ValidationState {
	for _, a := range n.Attrs {
		ar, ok := rule.Attributes[a.Name]
		if !ok {
			return schemaError(n, fmt.Sprintf("the '%s' attribute is not declared on '%s'", a.Name, n.Name))
		}
		if !validAttributeValue(ar.Type, a.Value) {
			return schemaError(n, fmt.Sprintf("the '%s' attribute of '%s' is invalid, '%s' is not a valid %s", a.Name, n.Name, a.Value, ar.Type))
		}
	}
	for _, name := range rule.requiredAttributes() {
		if _, ok := n.Attr(name); !ok {
			return schemaError(n, fmt.Sprintf("the required attribute '%s' of '%s' is missing", name, n.Name))
		}
	}
	return ValidationOk()
}

// requiredAttributes 按名字排序, 多个属性缺失时总是报告同一个
func (r *ElementRule) requiredAttributes() []string {
	var names []string
	for name, ar := range r.Attributes {
		if ar != nil && ar.Required {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func validAttributeValue(typ string, value string) bool {
	value = strings.TrimSpace(value)
	switch typ {
	case AttrTypeInt:
		_, err := cast.ToIntE(value)
		return err == nil && value != ""
	case AttrTypeBool:
		switch value {
		case "true", "false", "1", "0":
			return true
		}
		return false
	case AttrTypeDataType:
		_, ok := ParseDataType(value)
		return ok
	}
	return true
}

func (s *Schema) matches(p *Particle, name string) bool {
	if p.Ref != "" {
		return p.Ref == name
	}
	for _, ref := range s.Groups[p.Group] {
		if ref == name {
			return true
		}
	}
	return false
}

func (s *Schema) describe(p *Particle) string {
	if p.Ref != "" {
		return "'" + p.Ref + "'"
	}
	return "one of [" + strings.Join(s.Groups[p.Group], ", ") + "]"
}

func schemaError(n *Node, msg string) ValidationState {
	st := ValidationState{Status: SchemaError, Severity: SeverityError, Message: msg}
	if n != nil {
		st.Line = n.Line
	}
	return st
}
