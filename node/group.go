package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/netengine/core"
	"github.com/vuuvv/netengine/spec"
)

// GroupNode 重复读取一个结构体, 值为 []any.
// 设置了 CountType 时先读取数量; 否则设置了 BreakType 时读到值为 BreakOn 的结束标记为止;
// 都没有设置时读到数据末尾.
type GroupNode struct {
	CountType *spec.DataType
	BreakType *spec.DataType
	BreakOn   int
	Peek      bool
	PreLoop   Node
	PostLoop  Node
	Item      *StructureNode
}

func (n *GroupNode) GetName() string {
	if n.Item != nil {
		return n.Item.Name
	}
	return "group"
}

func (n *GroupNode) Compile(el spec.PacketDataElement) (err error) {
	st, ok := el.MemberState.(*spec.GroupState)
	if !ok {
		return errors.Errorf("group has no structure")
	}
	if st.CountType != nil && !st.CountType.IsNumeric() {
		return errors.Errorf("group count type should be numeric, '%s'", *st.CountType)
	}
	if st.BreakType != nil && !st.BreakType.IsNumeric() {
		return errors.Errorf("group break type should be numeric, '%s'", *st.BreakType)
	}
	n.CountType = st.CountType
	n.BreakType = st.BreakType
	if st.BreakOn != nil {
		n.BreakOn = *st.BreakOn
	}
	if st.Peek != nil {
		n.Peek = *st.Peek
	}

	if st.PreLoop != nil {
		if n.PreLoop, err = NodeCompileOne(*st.PreLoop); err != nil {
			return errors.Wrapf(err, "compile 'preLoop' failed: %s", err.Error())
		}
	}
	if st.PostLoop != nil {
		if n.PostLoop, err = NodeCompileOne(*st.PostLoop); err != nil {
			return errors.Wrapf(err, "compile 'postLoop' failed: %s", err.Error())
		}
	}

	n.Item = &StructureNode{}
	if err = n.Item.Compile(st.Structure); err != nil {
		return errors.Wrapf(err, "compile 'structure' failed: %s", err.Error())
	}
	return nil
}

func (n *GroupNode) Decode(ctx *core.Context) error {
	if n.PreLoop != nil {
		if err := NodeDecode(ctx, n.PreLoop); err != nil {
			return err
		}
	}

	items := []any{}
	next := func() error {
		start := ctx.Reader.ReadPosition()
		item, err := n.Item.decodeItem(ctx)
		if err != nil {
			return errors.Wrapf(err, "group item %d: %s", len(items), err.Error())
		}
		if ctx.Reader.ReadPosition() == start {
			return errors.Errorf("group item %d consumed no data", len(items))
		}
		items = append(items, item)
		return nil
	}

	switch {
	case n.CountType != nil:
		v, err := ReadValue(ctx.Reader, *n.CountType, 0)
		if err != nil {
			return errors.Wrapf(err, "group count: %s", err.Error())
		}
		count, _ := core.ToInt(v)
		for i := 0; i < count; i++ {
			if err := next(); err != nil {
				return err
			}
		}
	case n.BreakType != nil:
		for ctx.Reader.Remaining() > 0 {
			v, err := PeekValue(ctx.Reader, *n.BreakType, 0)
			if err != nil {
				return errors.Wrapf(err, "group break value: %s", err.Error())
			}
			if i, _ := core.ToInt(v); i == n.BreakOn {
				if !n.Peek {
					if _, err := ReadValue(ctx.Reader, *n.BreakType, 0); err != nil {
						return errors.WithStack(err)
					}
				}
				break
			}
			if err := next(); err != nil {
				return err
			}
		}
	default:
		for ctx.Reader.Remaining() > 0 {
			if err := next(); err != nil {
				return err
			}
		}
	}
	ctx.SetField(n.Item.Name, items)

	if n.PostLoop != nil {
		return NodeDecode(ctx, n.PostLoop)
	}
	return nil
}

func (n *GroupNode) Encode(ctx *core.Context) error {
	if n.PreLoop != nil {
		if err := NodeEncode(ctx, n.PreLoop); err != nil {
			return err
		}
	}

	val, _ := ctx.GetField(n.Item.Name)
	items, err := toItems(val)
	if err != nil {
		return errors.Wrapf(err, "group '%s': %s", n.Item.Name, err.Error())
	}

	if n.CountType != nil {
		if ctx.Writer, err = WriteValue(ctx.Writer, *n.CountType, 0, len(items)); err != nil {
			return errors.Wrapf(err, "group count: %s", err.Error())
		}
	}
	for i, item := range items {
		if err := n.Item.encodeItem(ctx, item); err != nil {
			return errors.Wrapf(err, "group item %d: %s", i, err.Error())
		}
	}
	if n.CountType == nil && n.BreakType != nil && !n.Peek {
		if ctx.Writer, err = WriteValue(ctx.Writer, *n.BreakType, 0, n.BreakOn); err != nil {
			return errors.Wrapf(err, "group break value: %s", err.Error())
		}
	}

	if n.PostLoop != nil {
		return NodeEncode(ctx, n.PostLoop)
	}
	return nil
}

func toItems(val any) ([]any, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, nil
	}
	return nil, errors.Errorf("value should be a list, '%T'", val)
}

func registerGroup() {
	RegisterNodeCompilerFactory[GroupNode](spec.TypeGroup)
}
