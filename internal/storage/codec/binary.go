package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/spaolacci/murmur3"

	"github.com/yndnr/sipkv/pkg/hashtable"
)

// Binary stream layout:
//
//	magic[8] version[1]
//	repeated: length[4] checksum[4] body[length]
//
// body is uvarint(keylen) key tag[1] value, where value is the raw text or an
// 8-byte big-endian number. checksum is murmur3-32 of body.
var binaryMagic = []byte("SIPKVBIN")

const (
	binaryVersion = 1

	// maxFrameLen bounds a single record.
	maxFrameLen = 256 << 20
)

func encodeBinary(w io.Writer, t *hashtable.Table) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(binaryMagic); err != nil {
		return err
	}
	if err := bw.WriteByte(binaryVersion); err != nil {
		return err
	}

	var (
		body bytes.Buffer
		hdr  [8]byte
		err  error
	)
	t.Range(func(key []byte, v hashtable.Value) bool {
		body.Reset()
		appendBody(&body, key, v)

		binary.BigEndian.PutUint32(hdr[0:4], uint32(body.Len()))
		binary.BigEndian.PutUint32(hdr[4:8], murmur3.Sum32(body.Bytes()))
		if _, err = bw.Write(hdr[:]); err != nil {
			return false
		}
		_, err = bw.Write(body.Bytes())
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("codec: write frame: %w", err)
	}
	return bw.Flush()
}

func appendBody(buf *bytes.Buffer, key []byte, v hashtable.Value) {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], uint64(len(key)))
	buf.Write(scratch[:n])
	buf.Write(key)
	buf.Write(AppendValue(scratch[:0], v))
}

// AppendValue appends the tagged binary form of v to dst: one tag byte, then
// the raw text or an 8-byte big-endian number.
func AppendValue(dst []byte, v hashtable.Value) []byte {
	dst = append(dst, byte(v.Kind()))
	switch v.Kind() {
	case hashtable.KindText:
		return append(dst, v.Text()...)
	case hashtable.KindUint:
		return binary.BigEndian.AppendUint64(dst, v.Uint())
	case hashtable.KindInt:
		return binary.BigEndian.AppendUint64(dst, uint64(v.Int()))
	case hashtable.KindFloat:
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(v.Float()))
	}
	return dst
}

// ParseValue decodes the output of AppendValue.
func ParseValue(b []byte) (hashtable.Value, error) {
	if len(b) == 0 {
		return hashtable.None, fmt.Errorf("%w: empty value", ErrCorrupted)
	}
	kind, payload := hashtable.Kind(b[0]), b[1:]
	if kind == hashtable.KindText {
		return hashtable.NewText(payload), nil
	}
	if !kind.Valid() || len(payload) != 8 {
		return hashtable.None, fmt.Errorf("%w: bad value for tag %d", ErrCorrupted, kind)
	}
	bits := binary.BigEndian.Uint64(payload)
	switch kind {
	case hashtable.KindUint:
		return hashtable.NewUint(bits), nil
	case hashtable.KindInt:
		return hashtable.NewInt(int64(bits)), nil
	default:
		return hashtable.NewFloat(math.Float64frombits(bits)), nil
	}
}

func scanBinary(r io.Reader, fn func(Record) error) error {
	br := bufio.NewReader(r)

	magic := make([]byte, len(binaryMagic)+1)
	if _, err := io.ReadFull(br, magic); err != nil {
		return fmt.Errorf("codec: read header: %w", unexpected(err))
	}
	if !bytes.Equal(magic[:len(binaryMagic)], binaryMagic) {
		return ErrBadMagic
	}
	if magic[len(binaryMagic)] != binaryVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorrupted, magic[len(binaryMagic)])
	}

	var hdr [8]byte
	for frame := 0; ; frame++ {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("codec: frame %d header: %w", frame, unexpected(err))
		}
		length := binary.BigEndian.Uint32(hdr[0:4])
		if length == 0 || length > maxFrameLen {
			return fmt.Errorf("%w: frame %d length %d", ErrCorrupted, frame, length)
		}
		body := make([]byte, length)
		if _, err := io.ReadFull(br, body); err != nil {
			return fmt.Errorf("codec: frame %d body: %w", frame, unexpected(err))
		}
		if murmur3.Sum32(body) != binary.BigEndian.Uint32(hdr[4:8]) {
			return fmt.Errorf("%w: frame %d", ErrChecksum, frame)
		}

		rec, err := decodeBody(body)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

func decodeBody(body []byte) (Record, error) {
	keyLen, n := binary.Uvarint(body)
	if n <= 0 || keyLen >= uint64(len(body)-n) {
		return Record{}, fmt.Errorf("%w: bad key length", ErrCorrupted)
	}
	body = body[n:]
	v, err := ParseValue(body[keyLen:])
	if err != nil {
		return Record{}, err
	}
	return Record{Key: body[:keyLen], Value: v}, nil
}
