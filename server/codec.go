package server

import (
	"encoding/binary"

	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/tick"
	"google.golang.org/protobuf/encoding/protowire"
)

const msgLenSize = 4 // 32bits uint32

var byteOrder = binary.LittleEndian

type Kind uint32

const (
	KindWaitRelative Kind = iota // 从服务端当前时间起等 Ticks
	KindWaitAbsolute             // 等到 Ticks 时刻
	KindNow                      // 查询当前时间
)

// 字段编号
const (
	fieldSeq      protowire.Number = 1
	fieldKind     protowire.Number = 2
	fieldTicks    protowire.Number = 3
	fieldNow      protowire.Number = 2
	fieldDeadline protowire.Number = 3
)

type Request struct {
	Seq   uint32
	Kind  Kind
	Ticks tick.Tick
}

type Reply struct {
	Seq      uint32
	Now      tick.Tick // 回复时服务端时间
	Deadline tick.Tick // 等待请求的截止时间, 查询时间为0
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendFrame 预留长度头, encode 追加消息体后回填长度
func appendFrame(b []byte, encode func([]byte) []byte) []byte {
	start := len(b)
	b = append(b, 0, 0, 0, 0)
	b = encode(b)
	byteOrder.PutUint32(b[start:], uint32(len(b)-start-msgLenSize))
	return b
}

func (r *Request) AppendFrame(b []byte) []byte {
	return appendFrame(b, func(b []byte) []byte {
		b = appendVarintField(b, fieldSeq, uint64(r.Seq))
		b = appendVarintField(b, fieldKind, uint64(r.Kind))
		return appendVarintField(b, fieldTicks, uint64(r.Ticks))
	})
}

func (r *Reply) AppendFrame(b []byte) []byte {
	return appendFrame(b, func(b []byte) []byte {
		b = appendVarintField(b, fieldSeq, uint64(r.Seq))
		b = appendVarintField(b, fieldNow, uint64(r.Now))
		return appendVarintField(b, fieldDeadline, uint64(r.Deadline))
	})
}

// consumeVarints 逐个解析字段, 未知字段跳过
func consumeVarints(b []byte, set func(num protowire.Number, v uint64)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errs.BadFrame.Wrap(protowire.ParseError(n))
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errs.BadFrame.Wrap(protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return errs.BadFrame.Wrap(protowire.ParseError(n))
		}
		b = b[n:]
		set(num, v)
	}
	return nil
}

func (r *Request) Unmarshal(b []byte) error {
	*r = Request{}
	err := consumeVarints(b, func(num protowire.Number, v uint64) {
		switch num {
		case fieldSeq:
			r.Seq = uint32(v)
		case fieldKind:
			r.Kind = Kind(v)
		case fieldTicks:
			r.Ticks = tick.Tick(v)
		}
	})
	if err != nil {
		return err
	}
	if r.Kind > KindNow {
		return errs.BadFrame.Printf("unknown kind %d", r.Kind)
	}
	return nil
}

func (r *Reply) Unmarshal(b []byte) error {
	*r = Reply{}
	return consumeVarints(b, func(num protowire.Number, v uint64) {
		switch num {
		case fieldSeq:
			r.Seq = uint32(v)
		case fieldNow:
			r.Now = tick.Tick(v)
		case fieldDeadline:
			r.Deadline = tick.Tick(v)
		}
	})
}

// frameLen 解析长度头, 返回整帧长度; 超过 maxFrame 报错
func frameLen(head []byte, maxFrame int) (int, error) {
	dataLen := int(byteOrder.Uint32(head))
	if maxFrame > 0 && dataLen > maxFrame {
		return 0, errs.BadFrame.Printf("frame %d bytes exceeds %d", dataLen, maxFrame)
	}
	return msgLenSize + dataLen, nil
}
