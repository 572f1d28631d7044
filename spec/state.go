package spec

// PacketState 解析后的数据包定义. 构建完成后不再修改, With* 方法返回新的值.
type PacketState struct {
	Name       string              `yaml:"name"`
	BasePacket string              `yaml:"base,omitempty"`
	Data       []PacketDataElement `yaml:"data,omitempty"`
}

func NewPacketState(name string) PacketState {
	return PacketState{Name: name}
}

func (s PacketState) WithBasePacket(base string) PacketState {
	s.BasePacket = base
	return s
}

func (s PacketState) WithData(elements ...PacketDataElement) PacketState {
	data := make([]PacketDataElement, 0, len(s.Data)+len(elements))
	data = append(data, s.Data...)
	s.Data = append(data, elements...)
	return s
}

// PacketDataElement 数据包中的一个字段.
// Name 对普通字段是标签文本, 对 structure 是 name 属性, condition 和 group 没有名字.
// Length 只对定长字符串有意义.
type PacketDataElement struct {
	Type        DataType    `yaml:"type"`
	Name        string      `yaml:"name,omitempty"`
	Length      int         `yaml:"length,omitempty"`
	MemberState MemberState `yaml:"members,omitempty"`
}

// MemberState is implemented by exactly StructureState, ConditionState and GroupState.
// Consumers are expected to type switch over it.
type MemberState interface {
	memberState()
}

type StructureState struct {
	Members []PacketDataElement `yaml:"members"`
}

// ConditionState 先读取 Test 字段, 再根据其值选择 case.
// Peek 为 true 时 Test 的值不会被消费.
type ConditionState struct {
	Peek  bool              `yaml:"peek"`
	Test  PacketDataElement `yaml:"test"`
	Cases []CaseState       `yaml:"cases"`
}

type CaseState struct {
	TestValue string              `yaml:"value"`
	Members   []PacketDataElement `yaml:"members,omitempty"`
}

// GroupState 重复读取 Structure. 未设置的属性为 nil.
type GroupState struct {
	CountType *DataType          `yaml:"countType,omitempty"`
	BreakOn   *int               `yaml:"breakOn,omitempty"`
	BreakType *DataType          `yaml:"breakType,omitempty"`
	Peek      *bool              `yaml:"peek,omitempty"`
	PreLoop   *PacketDataElement `yaml:"preLoop,omitempty"`
	PostLoop  *PacketDataElement `yaml:"postLoop,omitempty"`
	Structure PacketDataElement  `yaml:"structure"`
}

func (*StructureState) memberState() {}
func (*ConditionState) memberState() {}
func (*GroupState) memberState()     {}
