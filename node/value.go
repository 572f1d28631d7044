package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/netengine/core"
	"github.com/vuuvv/netengine/spec"
)

// 定长字符串不足时的填充字节
const PadByte byte = ' '

// ReadValue 按类型读取一个简单值, 数值类型返回 int, 字符串类型返回 string
func ReadValue(p *core.Packet, t spec.DataType, length int) (any, error) {
	switch t {
	case spec.TypeByte:
		v, err := p.ReadByte()
		return int(v), err
	case spec.TypeChar:
		v, err := p.ReadChar()
		return int(v), err
	case spec.TypeShort:
		return p.ReadShort()
	case spec.TypeThree:
		return p.ReadThree()
	case spec.TypeInt:
		return p.ReadInt()
	case spec.TypeString:
		return p.ReadString(length)
	case spec.TypeEndString:
		return p.ReadEndString()
	case spec.TypeBreakString:
		return p.ReadBreakString()
	}
	return nil, errors.Errorf("%s is not a simple type", t)
}

// PeekValue 与 ReadValue 相同, 但不移动读取位置
func PeekValue(p *core.Packet, t spec.DataType, length int) (any, error) {
	switch t {
	case spec.TypeByte:
		v, err := p.PeekByte()
		return int(v), err
	case spec.TypeChar:
		v, err := p.PeekChar()
		return int(v), err
	case spec.TypeShort:
		return p.PeekShort()
	case spec.TypeThree:
		return p.PeekThree()
	case spec.TypeInt:
		return p.PeekInt()
	case spec.TypeString:
		return p.PeekString(length)
	case spec.TypeEndString:
		return p.PeekEndString()
	case spec.TypeBreakString:
		return p.PeekBreakString()
	}
	return nil, errors.Errorf("%s is not a simple type", t)
}

// WriteValue 按类型写入一个简单值, val 为 nil 时写入零值
func WriteValue(b core.Builder, t spec.DataType, length int, val any) (core.Builder, error) {
	if t.IsNumeric() {
		i := 0
		if val != nil {
			var ok bool
			if i, ok = core.ToInt(val); !ok {
				return b, errors.Errorf("value should be an integer, '%v'", val)
			}
		}
		switch t {
		case spec.TypeByte:
			return b.AddByte(byte(i)), nil
		case spec.TypeChar:
			return b.AddChar(byte(i)), nil
		case spec.TypeShort:
			return b.AddShort(i), nil
		case spec.TypeThree:
			return b.AddThree(i), nil
		default:
			return b.AddInt(i), nil
		}
	}

	s := ""
	if val != nil {
		s = core.ToString(val)
	}
	switch t {
	case spec.TypeString:
		return b.AddBytes(core.ResizeBytes([]byte(s), length, PadByte)), nil
	case spec.TypeEndString:
		return b.AddString(s), nil
	case spec.TypeBreakString:
		return b.AddBreakString(s), nil
	}
	return b, errors.Errorf("%s is not a simple type", t)
}

func isSimple(t spec.DataType) bool {
	return t.IsNumeric() || t == spec.TypeString || t == spec.TypeEndString || t == spec.TypeBreakString
}
