package core

import (
	"golang.org/x/exp/constraints"
)

// 每一位的进位值, 每个边界是上一个边界 * 254
const (
	OneByteMax   = 253
	TwoByteMax   = 64009
	ThreeByteMax = 16194277
)

// 数字最多编码为4个字节
const MaxNumberSize = 4

// 高位未使用时的占位值, 解码时会被还原为0
const notPresentDigit = 254

// NumberEncoder 数字与字节序列之间的编解码, 编码结果中不会出现 0 和 255
type NumberEncoder interface {
	EncodeNumber(number int, size int) []byte
	DecodeNumber(b ...byte) int
}

// Encoder is the standard NumberEncoder. It is stateless.
type Encoder struct{}

var DefaultEncoder NumberEncoder = Encoder{}

// EncodeNumber 编码数字, 返回低位在前的 size 个字节.
// 调用方需要保证 size 能容纳 number, 这里不做溢出检查; 负数的结果是未定义的.
func (Encoder) EncodeNumber(number int, size int) []byte {
	unsigned := uint32(number)
	original := unsigned
	digits := [MaxNumberSize]uint32{notPresentDigit, notPresentDigit, notPresentDigit, notPresentDigit}

	if original >= ThreeByteMax {
		digits[3] = unsigned/ThreeByteMax + 1
		unsigned = unsigned % ThreeByteMax
	}
	if original >= TwoByteMax {
		digits[2] = unsigned/TwoByteMax + 1
		unsigned = unsigned % TwoByteMax
	}
	if original >= OneByteMax {
		digits[1] = unsigned/OneByteMax + 1
		unsigned = unsigned % OneByteMax
	}
	digits[0] = unsigned + 1

	size = clampSize(size)
	ret := make([]byte, size)
	for i := 0; i < size; i++ {
		ret[i] = byte(digits[i])
	}
	return ret
}

// DecodeNumber 解码 1-4 个字节, 输入不会被修改.
func (Encoder) DecodeNumber(b ...byte) int {
	if len(b) > MaxNumberSize {
		b = b[:MaxNumberSize]
	}
	digits := make([]byte, len(b))
	copy(digits, b)

	for i := range digits {
		switch digits[i] {
		case 254:
			digits[i] = 1
		case 0:
			digits[i] = 128
		}
		digits[i]--
	}

	ret := 0
	if len(digits) > 3 {
		ret += int(digits[3]) * ThreeByteMax
	}
	if len(digits) > 2 {
		ret += int(digits[2]) * TwoByteMax
	}
	if len(digits) > 1 {
		ret += int(digits[1]) * OneByteMax
	}
	if len(digits) > 0 {
		ret += int(digits[0])
	}
	return ret
}

// EncodeNumber encodes any integer type with the default encoder.
func EncodeNumber[T constraints.Integer](number T, size int) []byte {
	return DefaultEncoder.EncodeNumber(int(number), size)
}

// DecodeNumber decodes with the default encoder.
func DecodeNumber(b ...byte) int {
	return DefaultEncoder.DecodeNumber(b...)
}

func clampSize(size int) int {
	if size < 0 {
		return 0
	}
	if size > MaxNumberSize {
		return MaxNumberSize
	}
	return size
}
