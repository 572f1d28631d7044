package node

import (
	"sync"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/netengine/core"
	"github.com/vuuvv/netengine/spec"
	"github.com/vuuvv/netengine/utils"
)

// Node 由 spec.PacketDataElement 编译得到的可执行节点
type Node interface {
	Decode(ctx *core.Context) error
	Encode(ctx *core.Context) error
	GetName() string
	Compile(el spec.PacketDataElement) error
}

type NodeCompileFunc func(el spec.PacketDataElement) (Node, error)

var nodeCompilers = make(map[spec.DataType]NodeCompileFunc)

func RegisterNodeCompilerFactory[T any](dataTypes ...spec.DataType) {
	fn := func(el spec.PacketDataElement) (Node, error) {
		var v T
		node, ok := utils.CastTo[Node](&v)
		if !ok {
			return nil, errors.Errorf("Node type [%s] not match: %T", el.Type, &v)
		}
		err := node.Compile(el)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return node, nil
	}
	for _, t := range dataTypes {
		nodeCompilers[t] = fn
	}
}

var registerOnce sync.Once

// Register 注册所有节点类型, 可以重复调用
func Register() {
	registerOnce.Do(func() {
		registerField()
		registerStructure()
		registerCondition()
		registerGroup()
	})
}

func NodeCompileOne(el spec.PacketDataElement) (Node, error) {
	fn, ok := nodeCompilers[el.Type]
	if !ok {
		return nil, errors.Errorf("Node type [%s] not registered", el.Type)
	}
	node, err := fn(el)
	if err != nil {
		return nil, errors.Wrapf(err, "Field '%s' (%s) compile failed: %s", el.Name, el.Type, err.Error())
	}
	return node, nil
}

func NodeCompile(elements []spec.PacketDataElement) ([]Node, error) {
	var nodes []Node
	for _, el := range elements {
		node, err := NodeCompileOne(el)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func NodeEncode(ctx *core.Context, nodes ...Node) error {
	for _, node := range nodes {
		if err := node.Encode(ctx); err != nil {
			return errors.Wrapf(err, "Encode field %s failure: %s", node.GetName(), err.Error())
		}
	}
	return nil
}

func NodeDecode(ctx *core.Context, nodes ...Node) error {
	for _, node := range nodes {
		if err := node.Decode(ctx); err != nil {
			return errors.Wrapf(err, "Decode field %s failure: %s", node.GetName(), err.Error())
		}
	}
	return nil
}
