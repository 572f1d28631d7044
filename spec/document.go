package spec

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/vuuvv/errors"
)

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
)

type Attr struct {
	Name  string
	Value string
}

// Node XML 文档中的一个节点. 只有元素节点有 Name, Attrs 和 Children.
type Node struct {
	Type     NodeType
	Name     string
	Attrs    []Attr
	Data     string
	Line     int
	Parent   *Node
	Children []*Node
}

// Document 内存中的 XML 文档. 仅包含空白的文本节点不会被保留.
type Document struct {
	Root *Node
	// 根元素之外的注释
	Prolog []*Node
}

func ReadDocument(r io.Reader) (*Document, error) {
	d := xml.NewDecoder(r)
	doc := &Document{}
	var current *Node

	for {
		line, _ := d.InputPos()
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read packet spec document: %s", err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Type: ElementNode, Name: t.Name.Local, Line: line}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if current == nil {
				if doc.Root != nil {
					return nil, errors.Errorf("read packet spec document: multiple root elements at line %d", line)
				}
				doc.Root = n
			} else {
				current.AppendChild(n)
			}
			current = n
		case xml.EndElement:
			if current != nil {
				current = current.Parent
			}
		case xml.CharData:
			if current == nil || len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			current.AppendChild(&Node{Type: TextNode, Data: string(t), Line: line})
		case xml.Comment:
			n := &Node{Type: CommentNode, Data: string(t), Line: line}
			if current == nil {
				doc.Prolog = append(doc.Prolog, n)
			} else {
				current.AppendChild(n)
			}
		}
	}

	if doc.Root == nil {
		return nil, errors.New("read packet spec document: no root element")
	}
	return doc, nil
}

func ParseDocumentBytes(data []byte) (*Document, error) {
	return ReadDocument(bytes.NewReader(data))
}

func ParseDocumentString(data string) (*Document, error) {
	return ReadDocument(strings.NewReader(data))
}

func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() {
		_ = f.Close()
	}()
	doc, err := ReadDocument(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load '%s': %s", path, err.Error())
	}
	return doc, nil
}

// Clone 深拷贝, 修改拷贝不影响原文档
func (doc *Document) Clone() *Document {
	ret := &Document{}
	if doc.Root != nil {
		ret.Root = doc.Root.clone(nil)
	}
	for _, n := range doc.Prolog {
		ret.Prolog = append(ret.Prolog, n.clone(nil))
	}
	return ret
}

// RemoveComments 删除文档中所有的注释节点
func (doc *Document) RemoveComments() {
	doc.Prolog = nil
	if doc.Root != nil {
		doc.Root.removeComments()
	}
}

func (n *Node) clone(parent *Node) *Node {
	ret := &Node{
		Type:   n.Type,
		Name:   n.Name,
		Data:   n.Data,
		Line:   n.Line,
		Parent: parent,
	}
	if n.Attrs != nil {
		ret.Attrs = append([]Attr(nil), n.Attrs...)
	}
	for _, c := range n.Children {
		ret.Children = append(ret.Children, c.clone(ret))
	}
	return ret
}

func (n *Node) removeComments() {
	children := n.Children[:0]
	for _, c := range n.Children {
		if c.Type == CommentNode {
			continue
		}
		c.removeComments()
		children = append(children, c)
	}
	for i := len(children); i < len(n.Children); i++ {
		n.Children[i] = nil
	}
	n.Children = children
}

func (n *Node) AppendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// Attr 返回属性值, 属性名区分大小写
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) ChildElements() []*Node {
	var ret []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			ret = append(ret, c)
		}
	}
	return ret
}

// Descendants 先序遍历所有后代元素, 不包含自身
func (n *Node) Descendants() []*Node {
	var ret []*Node
	for _, c := range n.ChildElements() {
		ret = append(ret, c)
		ret = append(ret, c.Descendants()...)
	}
	return ret
}

// InnerText 所有后代文本节点的拼接
func (n *Node) InnerText() string {
	if n.Type == TextNode {
		return n.Data
	}
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Type != CommentNode {
			sb.WriteString(c.InnerText())
		}
	}
	return sb.String()
}

// InnerXML 子节点序列化后的内容
func (n *Node) InnerXML() string {
	var sb strings.Builder
	for _, c := range n.Children {
		c.writeXML(&sb)
	}
	return sb.String()
}

func (n *Node) writeXML(sb *strings.Builder) {
	switch n.Type {
	case TextNode:
		_ = xml.EscapeText(sb, []byte(n.Data))
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.Data)
		sb.WriteString("-->")
	case ElementNode:
		sb.WriteByte('<')
		sb.WriteString(n.Name)
		for _, a := range n.Attrs {
			sb.WriteByte(' ')
			sb.WriteString(a.Name)
			sb.WriteString(`="`)
			_ = xml.EscapeText(sb, []byte(a.Value))
			sb.WriteByte('"')
		}
		if len(n.Children) == 0 {
			sb.WriteString(" />")
			return
		}
		sb.WriteByte('>')
		for _, c := range n.Children {
			c.writeXML(sb)
		}
		sb.WriteString("</")
		sb.WriteString(n.Name)
		sb.WriteByte('>')
	}
}
