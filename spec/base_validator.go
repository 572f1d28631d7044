package spec

import (
	"fmt"

	"github.com/vuuvv/netengine/log"
	"go.uber.org/zap"
)

// BasePacketValidator 检查一组数据包的 base 引用: 引用必须存在, 且不能形成环.
// 只返回按输入顺序找到的第一个错误.
type BasePacketValidator struct{}

func NewBasePacketValidator() BasePacketValidator {
	return BasePacketValidator{}
}

func (v BasePacketValidator) ValidatePacketStates(states ...PacketState) ValidationState {
	byName := make(map[string]PacketState, len(states))
	for _, s := range states {
		if _, ok := byName[s.Name]; !ok {
			byName[s.Name] = s
		}
	}

	for _, s := range states {
		if s.BasePacket == "" {
			continue
		}
		if _, ok := byName[s.BasePacket]; !ok {
			st := ValidationState{
				Status:  NonexistentBasePacket,
				Message: fmt.Sprintf("packet %s references non-existent base packet %s", s.Name, s.BasePacket),
			}
			log.Warn(st.Message, zap.String("packet", s.Name))
			return st
		}
		if st := checkCircularDependencies(byName, s); !st.IsOk() {
			log.Warn(st.Message, zap.String("packet", s.Name))
			return st
		}
	}
	return ValidationOk()
}

// checkCircularDependencies 广度遍历 base 链, 同一个名字出现两次即为环.
// 链中间不存在的 base 不再继续追踪.
func checkCircularDependencies(byName map[string]PacketState, current PacketState) ValidationState {
	visited := map[string]struct{}{}
	queue := []PacketState{byName[current.BasePacket]}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if _, ok := visited[next.Name]; ok {
			return ValidationState{
				Status: CircularBasePacketDependency,
				Message: fmt.Sprintf("packet %s has a circular dependency in its base packets; %s is depended upon more than once",
					current.Name, next.Name),
			}
		}
		visited[next.Name] = struct{}{}

		if next.BasePacket == "" {
			continue
		}
		if base, ok := byName[next.BasePacket]; ok {
			queue = append(queue, base)
		}
	}
	return ValidationOk()
}

// ResolveBaseChain 返回从最顶层 base 到 name 自身的继承链.
// 调用前应先通过 ValidatePacketStates.
func ResolveBaseChain(byName map[string]PacketState, name string) ([]PacketState, error) {
	var chain []PacketState
	seen := map[string]struct{}{}
	for name != "" {
		if _, ok := seen[name]; ok {
			return nil, &InvalidSpecError{State: ValidationState{
				Status:  CircularBasePacketDependency,
				Message: fmt.Sprintf("packet %s is depended upon more than once", name),
			}}
		}
		seen[name] = struct{}{}
		s, ok := byName[name]
		if !ok {
			return nil, &InvalidSpecError{State: ValidationState{
				Status:  NonexistentBasePacket,
				Message: fmt.Sprintf("packet %s does not exist", name),
			}}
		}
		chain = append([]PacketState{s}, chain...)
		name = s.BasePacket
	}
	return chain, nil
}
