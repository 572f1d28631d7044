package core

import (
	"github.com/vuuvv/errors"
)

// 字符串结束符
const BreakByte byte = 0xFF

// 字符串中出现的结束符会被替换为该值
const BreakReplacement byte = 121

type SeekOrigin int

const (
	SeekBegin SeekOrigin = iota
	SeekCurrent
	SeekEnd
)

var (
	ErrOutOfBounds       = errors.New("operation is out of bounds of the packet")
	ErrSeekOutOfRange    = errors.New("position is out of bounds of the packet")
	ErrInvalidSeekOrigin = errors.New("invalid seek origin")
)

// Packet 数据包读取游标, 持有数据的独立拷贝和当前读取位置.
// 不是并发安全的.
type Packet struct {
	data         []byte
	readPosition int
	encoder      NumberEncoder
}

func NewPacket(data []byte) *Packet {
	return NewPacketWithEncoder(data, DefaultEncoder)
}

func NewPacketWithEncoder(data []byte, encoder NumberEncoder) *Packet {
	if encoder == nil {
		encoder = DefaultEncoder
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Packet{data: buf, encoder: encoder}
}

func (p *Packet) Length() int {
	return len(p.data)
}

func (p *Packet) ReadPosition() int {
	return p.readPosition
}

// Remaining 当前位置之后剩余的字节数
func (p *Packet) Remaining() int {
	if p.readPosition < 0 || p.readPosition > len(p.data) {
		return 0
	}
	return len(p.data) - p.readPosition
}

// RawData returns a copy of the underlying bytes.
func (p *Packet) RawData() []byte {
	ret := make([]byte, len(p.data))
	copy(ret, p.data)
	return ret
}

// Seek 移动读取位置, SeekEnd 以最后一个字节为基准.
// 只检查上界, 负数位置在下一次读取时才会报错.
func (p *Packet) Seek(offset int, origin SeekOrigin) error {
	var pos int
	switch origin {
	case SeekBegin:
		pos = offset
	case SeekCurrent:
		pos = p.readPosition + offset
	case SeekEnd:
		pos = len(p.data) - 1 + offset
	default:
		return errors.Wrapf(ErrInvalidSeekOrigin, "origin %d: %s", origin, ErrInvalidSeekOrigin.Error())
	}
	if pos > len(p.data) {
		return errors.Wrapf(ErrSeekOutOfRange, "seek to %d, length %d: %s", pos, len(p.data), ErrSeekOutOfRange.Error())
	}
	p.readPosition = pos
	return nil
}

func (p *Packet) checkBounds(n int) error {
	if n < 0 || p.readPosition < 0 || p.readPosition+n > len(p.data) {
		return errors.Wrapf(ErrOutOfBounds, "need %d bytes at %d, length %d: %s", n, p.readPosition, len(p.data), ErrOutOfBounds.Error())
	}
	return nil
}

func (p *Packet) peekNumber(size int) (int, error) {
	if err := p.checkBounds(size); err != nil {
		return 0, err
	}
	return p.encoder.DecodeNumber(p.data[p.readPosition : p.readPosition+size]...), nil
}

func (p *Packet) PeekByte() (byte, error) {
	if err := p.checkBounds(1); err != nil {
		return 0, err
	}
	return p.data[p.readPosition], nil
}

func (p *Packet) PeekChar() (byte, error) {
	v, err := p.peekNumber(1)
	return byte(v), err
}

func (p *Packet) PeekShort() (int, error) {
	return p.peekNumber(2)
}

func (p *Packet) PeekThree() (int, error) {
	return p.peekNumber(3)
}

func (p *Packet) PeekInt() (int, error) {
	return p.peekNumber(4)
}

func (p *Packet) PeekBytes(length int) ([]byte, error) {
	if err := p.checkBounds(length); err != nil {
		return nil, err
	}
	ret := make([]byte, length)
	copy(ret, p.data[p.readPosition:p.readPosition+length])
	return ret, nil
}

func (p *Packet) PeekString(length int) (string, error) {
	bs, err := p.PeekBytes(length)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

func (p *Packet) PeekEndString() (string, error) {
	return p.PeekString(len(p.data) - p.readPosition)
}

// PeekBreakString 读取到下一个 0xFF 之前, 没有结束符时读到末尾
func (p *Packet) PeekBreakString() (string, error) {
	if err := p.checkBounds(0); err != nil {
		return "", err
	}
	end := p.readPosition
	for end < len(p.data) && p.data[end] != BreakByte {
		end++
	}
	return p.PeekString(end - p.readPosition)
}

func (p *Packet) ReadByte() (byte, error) {
	v, err := p.PeekByte()
	if err != nil {
		return 0, err
	}
	p.readPosition++
	return v, nil
}

func (p *Packet) ReadChar() (byte, error) {
	v, err := p.PeekChar()
	if err != nil {
		return 0, err
	}
	p.readPosition++
	return v, nil
}

func (p *Packet) ReadShort() (int, error) {
	return p.readNumber(p.PeekShort, 2)
}

func (p *Packet) ReadThree() (int, error) {
	return p.readNumber(p.PeekThree, 3)
}

func (p *Packet) ReadInt() (int, error) {
	return p.readNumber(p.PeekInt, 4)
}

func (p *Packet) readNumber(peek func() (int, error), size int) (int, error) {
	v, err := peek()
	if err != nil {
		return 0, err
	}
	p.readPosition += size
	return v, nil
}

func (p *Packet) ReadBytes(length int) ([]byte, error) {
	v, err := p.PeekBytes(length)
	if err != nil {
		return nil, err
	}
	p.readPosition += length
	return v, nil
}

func (p *Packet) ReadString(length int) (string, error) {
	v, err := p.PeekString(length)
	if err != nil {
		return "", err
	}
	p.readPosition += length
	return v, nil
}

func (p *Packet) ReadEndString() (string, error) {
	return p.ReadString(len(p.data) - p.readPosition)
}

// ReadBreakString 跳过字符串和结束符, 位置不超过 Length
func (p *Packet) ReadBreakString() (string, error) {
	v, err := p.PeekBreakString()
	if err != nil {
		return "", err
	}
	p.readPosition = min(p.readPosition+len(v)+1, len(p.data))
	return v, nil
}
