package node

import (
	"strings"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/netengine/core"
	"github.com/vuuvv/netengine/spec"
)

type conditionCase struct {
	Value  string
	Fields []Node
}

// ConditionNode 根据测试字段的值选择一个 case 执行.
// Peek 为 true 时测试字段只查看不消费, 由 case 中的字段负责读取和写入.
type ConditionNode struct {
	Peek  bool
	Test  *FieldNode
	Cases []conditionCase
}

func (n *ConditionNode) GetName() string {
	return "condition"
}

func (n *ConditionNode) Compile(el spec.PacketDataElement) error {
	st, ok := el.MemberState.(*spec.ConditionState)
	if !ok {
		return errors.Errorf("condition has no test element")
	}
	n.Peek = st.Peek
	n.Test = &FieldNode{}
	if err := n.Test.Compile(st.Test); err != nil {
		return errors.Wrapf(err, "condition test element: %s", err.Error())
	}

	for _, c := range st.Cases {
		fields, err := NodeCompile(c.Members)
		if err != nil {
			return errors.Wrapf(err, "case '%s' compile failed: %s", c.TestValue, err.Error())
		}
		n.Cases = append(n.Cases, conditionCase{Value: strings.TrimSpace(c.TestValue), Fields: fields})
	}
	return nil
}

func (n *ConditionNode) match(val any) ([]Node, error) {
	key := strings.TrimSpace(core.ToString(val))
	for _, c := range n.Cases {
		if c.Value == key {
			return c.Fields, nil
		}
	}
	return nil, errors.Errorf("condition value %v of '%s' matches no case", val, n.Test.Name)
}

func (n *ConditionNode) Decode(ctx *core.Context) error {
	val, err := n.Test.read(ctx, n.Peek)
	if err != nil {
		return errors.Wrapf(err, "condition test '%s': %s", n.Test.Name, err.Error())
	}
	ctx.SetField(n.Test.Name, val)

	fields, err := n.match(val)
	if err != nil {
		return err
	}
	return NodeDecode(ctx, fields...)
}

func (n *ConditionNode) Encode(ctx *core.Context) error {
	val, ok := ctx.GetField(n.Test.Name)
	if !ok {
		return errors.Errorf("condition field '%s' not found in context", n.Test.Name)
	}
	fields, err := n.match(val)
	if err != nil {
		return err
	}
	if !n.Peek {
		if err := n.Test.Encode(ctx); err != nil {
			return err
		}
	}
	return NodeEncode(ctx, fields...)
}

func registerCondition() {
	RegisterNodeCompilerFactory[ConditionNode](spec.TypeCondition)
}
