// Package blockcodec frames block payloads for the data tier.
//
// Frame layout (little endian):
//
//	[type u8][raw length u32][stored length u32][payload]
//
// When compression does not shrink a payload by at least 10% the frame is
// written with TypeNone, so Decode never depends on the type requested at
// Encode time.
package blockcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/blockloc/internal/conv"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type is the payload encoding of a frame.
type Type uint8

const (
	TypeNone Type = 0
	TypeLZ4  Type = 1
	TypeZSTD Type = 2
)

// HeaderSize is the fixed frame header length.
const HeaderSize = 9

var (
	ErrShortFrame   = errors.New("blockcodec: frame shorter than header")
	ErrTruncated    = errors.New("blockcodec: payload truncated")
	ErrSizeMismatch = errors.New("blockcodec: decoded size mismatch")
)

// ErrUnknownType is returned for a frame whose type byte is not recognized.
type ErrUnknownType struct {
	Type Type
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("blockcodec: unknown frame type %d", e.Type)
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode frames data using t. Unknown types fall back to TypeNone.
func Encode(data []byte, t Type) ([]byte, error) {
	rawLen, err := conv.IntToUint32(len(data))
	if err != nil {
		return nil, fmt.Errorf("blockcodec: %w", err)
	}

	var payload []byte

	switch t {
	case TypeLZ4:
		payload, err = compressLZ4(data)
	case TypeZSTD:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}
	if err != nil {
		return nil, err
	}

	if payload == nil || float64(len(payload)) > float64(len(data))*0.9 {
		t, payload = TypeNone, data
	}

	out := make([]byte, HeaderSize+len(payload))
	out[0] = byte(t)
	binary.LittleEndian.PutUint32(out[1:], rawLen)
	binary.LittleEndian.PutUint32(out[5:], uint32(len(payload)))
	copy(out[HeaderSize:], payload)
	return out, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return buf[:n], nil
}

// Header holds the decoded frame header.
type Header struct {
	Type      Type
	RawLen    uint32
	StoredLen uint32
}

// ParseHeader decodes the header at the start of frame.
func ParseHeader(frame []byte) (Header, error) {
	if len(frame) < HeaderSize {
		return Header{}, ErrShortFrame
	}
	return Header{
		Type:      Type(frame[0]),
		RawLen:    binary.LittleEndian.Uint32(frame[1:]),
		StoredLen: binary.LittleEndian.Uint32(frame[5:]),
	}, nil
}

// Decode returns the raw payload of frame. For TypeNone frames the result
// aliases frame.
func Decode(frame []byte) ([]byte, error) {
	h, err := ParseHeader(frame)
	if err != nil {
		return nil, err
	}
	if uint64(len(frame)) < HeaderSize+uint64(h.StoredLen) {
		return nil, ErrTruncated
	}
	payload := frame[HeaderSize : HeaderSize+int(h.StoredLen)]

	switch h.Type {
	case TypeNone:
		if h.StoredLen != h.RawLen {
			return nil, ErrSizeMismatch
		}
		return payload, nil

	case TypeLZ4:
		out := make([]byte, h.RawLen)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != h.RawLen {
			return nil, ErrSizeMismatch
		}
		return out, nil

	case TypeZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, h.RawLen))
		if err != nil {
			return nil, err
		}
		if uint32(len(out)) != h.RawLen {
			return nil, ErrSizeMismatch
		}
		return out, nil

	default:
		return nil, &ErrUnknownType{Type: h.Type}
	}
}
