package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/netengine/core"
	"github.com/vuuvv/netengine/spec"
)

// FieldNode 数值或字符串字段
type FieldNode struct {
	Name   string
	Type   spec.DataType
	Length int
}

func (n *FieldNode) GetName() string {
	return n.Name
}

func (n *FieldNode) Compile(el spec.PacketDataElement) error {
	if !isSimple(el.Type) {
		return errors.Errorf("%s is not a field type", el.Type)
	}
	if el.Type == spec.TypeString && el.Length < 0 {
		return errors.Errorf("negative length: %d", el.Length)
	}
	n.Name = el.Name
	n.Type = el.Type
	n.Length = el.Length
	return nil
}

func (n *FieldNode) read(ctx *core.Context, peek bool) (any, error) {
	if peek {
		return PeekValue(ctx.Reader, n.Type, n.Length)
	}
	return ReadValue(ctx.Reader, n.Type, n.Length)
}

func (n *FieldNode) Decode(ctx *core.Context) error {
	val, err := n.read(ctx, false)
	if err != nil {
		return errors.Wrapf(err, "Parse field %s: %s", n.Name, err.Error())
	}
	ctx.SetField(n.Name, val)
	return nil
}

func (n *FieldNode) Encode(ctx *core.Context) error {
	val, _ := ctx.GetField(n.Name)
	b, err := WriteValue(ctx.Writer, n.Type, n.Length, val)
	if err != nil {
		return errors.Wrapf(err, "value of '%s': %s", n.Name, err.Error())
	}
	ctx.Writer = b
	return nil
}

func registerField() {
	RegisterNodeCompilerFactory[FieldNode](
		spec.TypeByte, spec.TypeChar, spec.TypeShort, spec.TypeThree, spec.TypeInt,
		spec.TypeString, spec.TypeEndString, spec.TypeBreakString,
	)
}
