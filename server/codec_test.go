package server

import (
	"testing"

	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/tick"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestRequestFrame(t *testing.T) {
	req := &Request{Seq: 7, Kind: KindWaitAbsolute, Ticks: tick.Max}
	buf := req.AppendFrame([]byte{0xAA})
	require.Equal(t, byte(0xAA), buf[0])

	frame := buf[1:]
	total, err := frameLen(frame, 0)
	require.NoError(t, err)
	require.Equal(t, len(frame), total)

	var got Request
	require.NoError(t, got.Unmarshal(frame[msgLenSize:]))
	require.Equal(t, *req, got)
}

func TestZeroFieldsOmitted(t *testing.T) {
	buf := (&Reply{}).AppendFrame(nil)
	require.Equal(t, []byte{0, 0, 0, 0}, buf)
	var rep Reply
	require.NoError(t, rep.Unmarshal(buf[msgLenSize:]))
	require.Equal(t, Reply{}, rep)
}

func TestUnknownFieldsSkipped(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 3)
	b = protowire.AppendTag(b, 9, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("trace-id"))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, 4096)

	var req Request
	require.NoError(t, req.Unmarshal(b))
	require.Equal(t, Request{Seq: 3, Kind: KindWaitRelative, Ticks: 4096}, req)
}

func TestBadFrames(t *testing.T) {
	var req Request
	// 截断的varint
	err := req.Unmarshal([]byte{0x08, 0xFF})
	require.ErrorIs(t, err, errs.BadFrame)

	var b []byte
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 9)
	require.ErrorIs(t, req.Unmarshal(b), errs.BadFrame)

	head := make([]byte, msgLenSize)
	byteOrder.PutUint32(head, 4096)
	_, err = frameLen(head, 1024)
	require.ErrorIs(t, err, errs.BadFrame)
}
