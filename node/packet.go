package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/netengine/core"
	"github.com/vuuvv/netengine/spec"
)

// Packet 编译后的数据包, 字段顺序为基础包在前, 自身在后
type Packet struct {
	Name   string
	Chain  []string
	Fields []Node
}

// CompilePacket 解析 name 的基础包链并编译所有字段
func CompilePacket(states map[string]spec.PacketState, name string) (*Packet, error) {
	Register()

	chain, err := spec.ResolveBaseChain(states, name)
	if err != nil {
		return nil, err
	}

	p := &Packet{Name: name}
	for _, state := range chain {
		fields, err := NodeCompile(state.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "compile packet '%s': %s", state.Name, err.Error())
		}
		p.Chain = append(p.Chain, state.Name)
		p.Fields = append(p.Fields, fields...)
	}
	return p, nil
}

func (p *Packet) Decode(data []byte) (map[string]any, error) {
	ctx := core.NewContext(data)
	if err := NodeDecode(ctx, p.Fields...); err != nil {
		return ctx.Fields, errors.Wrapf(err, "decode packet '%s': %s", p.Name, err.Error())
	}
	return ctx.Fields, nil
}

func (p *Packet) Encode(fields map[string]any) (core.Builder, error) {
	ctx := core.NewEncodeContext(fields)
	if err := NodeEncode(ctx, p.Fields...); err != nil {
		return ctx.Writer, errors.Wrapf(err, "encode packet '%s': %s", p.Name, err.Error())
	}
	return ctx.Writer, nil
}
