package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/netengine/core"
	"github.com/vuuvv/netengine/spec"
)

// StructureNode 嵌套结构, 值为 map[string]any
type StructureNode struct {
	Name   string
	Fields []Node
}

func (n *StructureNode) GetName() string {
	return n.Name
}

func (n *StructureNode) Compile(el spec.PacketDataElement) (err error) {
	st, ok := el.MemberState.(*spec.StructureState)
	if !ok {
		return errors.Errorf("structure '%s' has no members", el.Name)
	}
	n.Name = el.Name
	n.Fields, err = NodeCompile(st.Members)
	if err != nil {
		return errors.Wrapf(err, "structure fields compile failed: %s", err.Error())
	}
	return nil
}

// decodeItem 在新的作用域中解码一次结构体
func (n *StructureNode) decodeItem(ctx *core.Context) (map[string]any, error) {
	fields := make(map[string]any)
	err := ctx.Scope(fields, func() error {
		return NodeDecode(ctx, n.Fields...)
	})
	return fields, err
}

func (n *StructureNode) encodeItem(ctx *core.Context, val any) error {
	fields, err := toFieldMap(val)
	if err != nil {
		return errors.Wrapf(err, "structure '%s': %s", n.Name, err.Error())
	}
	return ctx.Scope(fields, func() error {
		return NodeEncode(ctx, n.Fields...)
	})
}

func (n *StructureNode) Decode(ctx *core.Context) error {
	fields, err := n.decodeItem(ctx)
	if err != nil {
		return err
	}
	ctx.SetField(n.Name, fields)
	return nil
}

func (n *StructureNode) Encode(ctx *core.Context) error {
	val, _ := ctx.GetField(n.Name)
	return n.encodeItem(ctx, val)
}

func toFieldMap(val any) (map[string]any, error) {
	switch v := val.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	}
	return nil, errors.Errorf("value should be a map[string]any, '%T'", val)
}

func registerStructure() {
	RegisterNodeCompilerFactory[StructureNode](spec.TypeStructure)
}
