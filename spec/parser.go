package spec

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/netengine/log"
	"github.com/vuuvv/netengine/utils"
	"go.uber.org/zap"
)

const (
	packetElement   = "packet"
	caseElement     = "case"
	preLoopElement  = "preLoop"
	postLoopElement = "postLoop"

	nameAttribute      = "name"
	baseAttribute      = "base"
	lengthAttribute    = "length"
	valueAttribute     = "value"
	peekAttribute      = "peek"
	countTypeAttribute = "countType"
	breakOnAttribute   = "breakOn"
	breakTypeAttribute = "breakType"
)

type ParseOptions uint8

const (
	ParseOptionsNone     ParseOptions = 0
	SkipSchemaValidation ParseOptions = 1
)

func (o ParseOptions) Has(flag ParseOptions) bool {
	return o&flag == flag
}

// Parser 将一个数据包定义文档解析为 PacketState. 原始文档不会被修改, 可以重复解析.
type Parser struct {
	doc    *Document
	path   string
	schema SchemaValidator
}

func NewParser(doc *Document) *Parser {
	return &Parser{doc: doc}
}

func NewParserFromBytes(data []byte) (*Parser, error) {
	doc, err := ParseDocumentBytes(data)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return NewParser(doc), nil
}

func NewParserFromFile(path string) (*Parser, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	p := NewParser(doc)
	p.path = path
	return p, nil
}

// WithSchema 替换默认的 schema 校验
func (p *Parser) WithSchema(schema SchemaValidator) *Parser {
	p.schema = schema
	return p
}

func (p *Parser) Path() string {
	return p.path
}

// Parse 校验并解析文档.
// 校验失败返回 *InvalidSpecError, 文档内容无法转换时返回 *MalformedSpecError.
func (p *Parser) Parse(options ParseOptions) (PacketState, error) {
	if p.doc == nil || p.doc.Root == nil {
		return PacketState{}, errors.New("parse packet spec: empty document")
	}
	doc := p.doc.Clone()
	doc.RemoveComments()

	state, err := p.validate(doc, options)
	if err != nil {
		return PacketState{}, err
	}
	if !state.IsOk() {
		log.Debug("packet spec validation failed", zap.String("path", p.path), zap.Stringer("result", state))
		return PacketState{}, state.Err()
	}

	root := doc.Root
	name, ok := root.Attr(nameAttribute)
	if !ok {
		return PacketState{}, malformed(root, "missing required attribute '%s'", nameAttribute)
	}
	packet := NewPacketState(name)
	if base, _ := root.Attr(baseAttribute); base != "" {
		packet = packet.WithBasePacket(base)
	}

	for _, child := range root.ChildElements() {
		el, err := toDataElement(child)
		if err != nil {
			return PacketState{}, err
		}
		packet = packet.WithData(el)
	}

	log.Debug("packet spec parsed",
		zap.String("path", p.path),
		zap.String("packet", packet.Name),
		zap.String("base", packet.BasePacket),
		zap.Int("elements", len(packet.Data)))
	return packet, nil
}

func (p *Parser) validate(doc *Document, options ParseOptions) (ValidationState, error) {
	if !options.Has(SkipSchemaValidation) {
		schema := p.schema
		if schema == nil {
			s, err := DefaultSchema()
			if err != nil {
				return ValidationState{}, errors.WithStack(err)
			}
			schema = s
		}
		if state := schema.Validate(doc); !state.IsOk() {
			return state, nil
		}
	} else if !strings.EqualFold(doc.Root.Name, packetElement) {
		return ValidationState{
			Status:  InvalidRootElement,
			Message: fmt.Sprintf("root element is '%s', expected '%s'", doc.Root.Name, packetElement),
			Line:    doc.Root.Line,
		}, nil
	}
	return checkRedefinitions(doc.Root), nil
}

// checkRedefinitions 同一父节点下内容完全相同的元素视为重复定义.
// 比较的是元素的内容而不是名字, case 元素不参与比较.
func checkRedefinitions(root *Node) ValidationState {
	var nodes []*Node
	for _, n := range root.Descendants() {
		if n.Name != caseElement {
			nodes = append(nodes, n)
		}
	}
	for _, siblings := range utils.GroupBy(nodes, func(n *Node) *Node { return n.Parent }) {
		for _, same := range utils.GroupBy(siblings, func(n *Node) string { return n.InnerXML() }) {
			if len(same) > 1 {
				return ValidationState{
					Status: ElementRedefinition,
					Message: fmt.Sprintf("element '%s' with content '%s' is defined %d times under '%s'",
						same[0].Name, same[0].InnerXML(), len(same), same[0].Parent.Name),
					Line: same[1].Line,
				}
			}
		}
	}
	return ValidationOk()
}

func toDataElement(n *Node) (PacketDataElement, error) {
	dataType, ok := ParseDataType(n.Name)
	if !ok {
		return PacketDataElement{}, malformed(n, "unable to parse packet data type of '%s'", n.Name)
	}

	length := 0
	if v, ok := n.Attr(lengthAttribute); ok {
		l, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return PacketDataElement{}, malformed(n, "invalid %s '%s'", lengthAttribute, v)
		}
		length = l
	}

	el := PacketDataElement{Type: dataType, Length: length}
	var err error
	switch dataType {
	case TypeStructure:
		name, ok := n.Attr(nameAttribute)
		if !ok {
			return PacketDataElement{}, malformed(n, "missing required attribute '%s'", nameAttribute)
		}
		el.Name = name
		el.MemberState, err = toStructureState(n)
	case TypeCondition:
		el.MemberState, err = toConditionState(n)
	case TypeGroup:
		el.MemberState, err = toGroupState(n)
	default:
		el.Name = n.InnerText()
	}
	if err != nil {
		return PacketDataElement{}, err
	}
	return el, nil
}

func toDataElements(nodes []*Node) ([]PacketDataElement, error) {
	var ret []PacketDataElement
	for _, c := range nodes {
		el, err := toDataElement(c)
		if err != nil {
			return nil, err
		}
		ret = append(ret, el)
	}
	return ret, nil
}

func toStructureState(n *Node) (*StructureState, error) {
	members, err := toDataElements(n.ChildElements())
	if err != nil {
		return nil, err
	}
	return &StructureState{Members: members}, nil
}

func toConditionState(n *Node) (*ConditionState, error) {
	peekStr, ok := n.Attr(peekAttribute)
	if !ok {
		return nil, malformed(n, "missing required attribute '%s'", peekAttribute)
	}
	peek, err := cast.ToBoolE(strings.TrimSpace(peekStr))
	if err != nil {
		return nil, malformed(n, "invalid %s '%s'", peekAttribute, peekStr)
	}

	children := n.ChildElements()
	if len(children) == 0 {
		return nil, malformed(n, "missing test element")
	}
	test, err := toDataElement(children[0])
	if err != nil {
		return nil, err
	}

	state := &ConditionState{Peek: peek, Test: test}
	for _, c := range children[1:] {
		if !strings.EqualFold(c.Name, caseElement) {
			continue
		}
		value, ok := c.Attr(valueAttribute)
		if !ok {
			return nil, malformed(c, "missing required attribute '%s'", valueAttribute)
		}
		members, err := toDataElements(c.ChildElements())
		if err != nil {
			return nil, err
		}
		state.Cases = append(state.Cases, CaseState{TestValue: value, Members: members})
	}
	return state, nil
}

func toGroupState(n *Node) (*GroupState, error) {
	state := &GroupState{}

	if v, ok := n.Attr(countTypeAttribute); ok {
		if t, ok := ParseDataType(v); ok {
			state.CountType = &t
		}
	}
	if v, ok := n.Attr(breakOnAttribute); ok {
		if i, err := cast.ToIntE(strings.TrimSpace(v)); err == nil {
			state.BreakOn = &i
		}
	}
	if v, ok := n.Attr(breakTypeAttribute); ok {
		if t, ok := ParseDataType(v); ok {
			state.BreakType = &t
		}
	}
	if v, ok := n.Attr(peekAttribute); ok {
		if b, err := cast.ToBoolE(strings.TrimSpace(v)); err == nil {
			state.Peek = &b
		}
	}

	var err error
	children := n.ChildElements()
	if state.PreLoop, err = loopElement(n, children, preLoopElement); err != nil {
		return nil, err
	}
	if state.PostLoop, err = loopElement(n, children, postLoopElement); err != nil {
		return nil, err
	}

	structure, err := singleChild(n, children, TypeStructure.String())
	if err != nil {
		return nil, err
	}
	if structure == nil {
		return nil, malformed(n, "missing required element '%s'", TypeStructure)
	}
	if state.Structure, err = toDataElement(structure); err != nil {
		return nil, err
	}
	return state, nil
}

// loopElement preLoop/postLoop 中的第一个元素
func loopElement(parent *Node, children []*Node, name string) (*PacketDataElement, error) {
	wrapper, err := singleChild(parent, children, name)
	if err != nil || wrapper == nil {
		return nil, err
	}
	inner := wrapper.ChildElements()
	if len(inner) == 0 {
		return nil, nil
	}
	el, err := toDataElement(inner[0])
	if err != nil {
		return nil, err
	}
	return &el, nil
}

func singleChild(parent *Node, children []*Node, name string) (*Node, error) {
	var found *Node
	for _, c := range children {
		if !strings.EqualFold(c.Name, name) {
			continue
		}
		if found != nil {
			return nil, malformed(parent, "element '%s' is defined more than once", name)
		}
		found = c
	}
	return found, nil
}
