package spec

import (
	"strconv"
	"strings"

	"github.com/vuuvv/errors"
)

// DataType 数据包字段类型, 对应数据包定义文档中的标签名
type DataType int

const (
	TypeByte DataType = iota
	TypeChar
	TypeShort
	TypeThree
	TypeInt
	TypeString
	TypeEndString
	TypeBreakString
	TypeStructure
	TypeCondition
	TypeGroup
)

var dataTypeNames = [...]string{
	TypeByte:        "byte",
	TypeChar:        "char",
	TypeShort:       "short",
	TypeThree:       "three",
	TypeInt:         "int",
	TypeString:      "string",
	TypeEndString:   "endString",
	TypeBreakString: "breakString",
	TypeStructure:   "structure",
	TypeCondition:   "condition",
	TypeGroup:       "group",
}

var dataTypesByName = func() map[string]DataType {
	m := make(map[string]DataType, len(dataTypeNames))
	for i, name := range dataTypeNames {
		m[strings.ToLower(name)] = DataType(i)
	}
	return m
}()

// ParseDataType 不区分大小写
func ParseDataType(name string) (DataType, bool) {
	t, ok := dataTypesByName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

func (t DataType) String() string {
	if t < 0 || int(t) >= len(dataTypeNames) {
		return "DataType(" + strconv.Itoa(int(t)) + ")"
	}
	return dataTypeNames[t]
}

// IsNumeric reports whether values of t go through the number encoder (or are a raw byte).
func (t DataType) IsNumeric() bool {
	return t >= TypeByte && t <= TypeInt
}

// Size 数值类型的字节数, 其他类型返回0
func (t DataType) Size() int {
	switch t {
	case TypeByte, TypeChar:
		return 1
	case TypeShort:
		return 2
	case TypeThree:
		return 3
	case TypeInt:
		return 4
	}
	return 0
}

func (t DataType) MarshalYAML() (any, error) {
	return t.String(), nil
}

func (t *DataType) UnmarshalText(text []byte) error {
	v, ok := ParseDataType(string(text))
	if !ok {
		return errors.Errorf("unknown packet data type '%s'", text)
	}
	*t = v
	return nil
}
