package core

import (
	"fmt"

	"github.com/spf13/cast"
)

func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return fmt.Sprintf("%+v", v)
	default:
		return cast.ToString(val)
	}
}

func ToInt(val any) (int, bool) {
	if val == nil {
		return 0, false
	}
	i, err := cast.ToIntE(val)
	if err != nil {
		return 0, false
	}
	return i, true
}

// ResizeBytes 截断或在右侧填充到 size 个字节
func ResizeBytes(data []byte, size int, padByte byte) []byte {
	if size < 0 {
		return nil
	}
	if len(data) >= size {
		return data[:size]
	}
	result := make([]byte, size)
	copy(result, data)
	for i := len(data); i < size; i++ {
		result[i] = padByte
	}
	return result
}
