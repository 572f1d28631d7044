package core

// Context 解码/编码过程中的状态. 解码时从 Reader 读取, 编码时向 Writer 追加.
// Fields 是当前作用域的字段值, 进入结构体时会被替换为子作用域.
type Context struct {
	Reader *Packet
	Writer Builder
	Fields map[string]any
}

func NewContext(data []byte) *Context {
	return &Context{
		Reader: NewPacket(data),
		Writer: NewBuilder(),
		Fields: make(map[string]any),
	}
}

// NewEncodeContext 创建编码用的 Context, fields 为待编码的字段值
func NewEncodeContext(fields map[string]any) *Context {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Context{
		Writer: NewBuilder(),
		Fields: fields,
	}
}

func (c *Context) GetField(name string) (any, bool) {
	v, ok := c.Fields[name]
	return v, ok
}

func (c *Context) SetField(name string, val any) {
	if name == "" {
		return
	}
	c.Fields[name] = val
}

// Scope 在子作用域中执行 fn, 执行完成后恢复原作用域
func (c *Context) Scope(fields map[string]any, fn func() error) error {
	parent := c.Fields
	c.Fields = fields
	defer func() {
		c.Fields = parent
	}()
	return fn()
}
