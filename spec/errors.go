package spec

import (
	"fmt"
)

type ValidationResult int

const (
	Ok ValidationResult = iota
	SchemaError
	InvalidRootElement
	ElementRedefinition
	NonexistentBasePacket
	CircularBasePacketDependency
)

func (r ValidationResult) String() string {
	switch r {
	case Ok:
		return "Ok"
	case SchemaError:
		return "SchemaError"
	case InvalidRootElement:
		return "InvalidRootElement"
	case ElementRedefinition:
		return "ElementRedefinition"
	case NonexistentBasePacket:
		return "NonexistentBasePacket"
	case CircularBasePacketDependency:
		return "CircularBasePacketDependency"
	}
	return fmt.Sprintf("ValidationResult(%d)", int(r))
}

type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
)

// ValidationState 校验结果. Severity 和 Line 只在 SchemaError 时有值.
type ValidationState struct {
	Status   ValidationResult
	Severity Severity
	Message  string
	Line     int
}

func ValidationOk() ValidationState {
	return ValidationState{Status: Ok}
}

func (s ValidationState) IsOk() bool {
	return s.Status == Ok
}

// Err 校验失败时返回 *InvalidSpecError, 成功时返回 nil
func (s ValidationState) Err() error {
	if s.IsOk() {
		return nil
	}
	return &InvalidSpecError{State: s}
}

func (s ValidationState) String() string {
	msg := s.Status.String()
	if s.Message != "" {
		msg += ": " + s.Message
	}
	if s.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", s.Line)
	}
	return msg
}

// InvalidSpecError 可恢复的数据包定义校验错误, 调用方根据 Result() 分支处理
type InvalidSpecError struct {
	State ValidationState
}

func (e *InvalidSpecError) Error() string {
	return "invalid packet spec: " + e.State.String()
}

func (e *InvalidSpecError) Result() ValidationResult {
	return e.State.Status
}

// MalformedSpecError 文档无法转换为数据包定义, 与解析选项无关
type MalformedSpecError struct {
	Element string
	Line    int
	Reason  string
}

func (e *MalformedSpecError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed packet spec: <%s> at line %d: %s", e.Element, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed packet spec: <%s>: %s", e.Element, e.Reason)
}

func malformed(n *Node, format string, args ...any) error {
	e := &MalformedSpecError{Reason: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Element = n.Name
		e.Line = n.Line
	}
	return e
}
