package core

// Builder 数据包构建器. 每次追加都返回新的 Builder, 接收者本身不会被修改,
// 因此可以从同一个前缀安全地派生多个分支.
type Builder struct {
	data    []byte
	encoder NumberEncoder
}

func NewBuilder() Builder {
	return NewBuilderWithEncoder(DefaultEncoder)
}

func NewBuilderWithEncoder(encoder NumberEncoder) Builder {
	if encoder == nil {
		encoder = DefaultEncoder
	}
	return Builder{encoder: encoder}
}

func (b Builder) Length() int {
	return len(b.data)
}

// Bytes returns a copy of the accumulated bytes.
func (b Builder) Bytes() []byte {
	ret := make([]byte, len(b.data))
	copy(ret, b.data)
	return ret
}

func (b Builder) numberEncoder() NumberEncoder {
	if b.encoder == nil {
		return DefaultEncoder
	}
	return b.encoder
}

func (b Builder) AddBreak() Builder {
	return b.AddByte(BreakByte)
}

func (b Builder) AddByte(v byte) Builder {
	return b.AddBytes([]byte{v})
}

func (b Builder) AddChar(v byte) Builder {
	return b.AddBytes(b.numberEncoder().EncodeNumber(int(v), 1))
}

func (b Builder) AddShort(v int) Builder {
	return b.AddBytes(b.numberEncoder().EncodeNumber(v, 2))
}

func (b Builder) AddThree(v int) Builder {
	return b.AddBytes(b.numberEncoder().EncodeNumber(v, 3))
}

func (b Builder) AddInt(v int) Builder {
	return b.AddBytes(b.numberEncoder().EncodeNumber(v, 4))
}

// AddString 按字节写入, 不带结束符
func (b Builder) AddString(s string) Builder {
	return b.AddBytes([]byte(s))
}

// AddBreakString 写入字符串和 0xFF 结束符, 字符串中的 0xFF 替换为 121
func (b Builder) AddBreakString(s string) Builder {
	bs := make([]byte, len(s)+1)
	for i := 0; i < len(s); i++ {
		if s[i] == BreakByte {
			bs[i] = BreakReplacement
		} else {
			bs[i] = s[i]
		}
	}
	bs[len(s)] = BreakByte
	return b.AddBytes(bs)
}

func (b Builder) AddBytes(bs []byte) Builder {
	data := make([]byte, len(b.data), len(b.data)+len(bs))
	copy(data, b.data)
	data = append(data, bs...)
	return Builder{data: data, encoder: b.encoder}
}

// Build 生成一个从位置0开始读取的 Packet, 使用默认的数字编码
func (b Builder) Build() *Packet {
	return NewPacket(b.data)
}
