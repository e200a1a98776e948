package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/sipkv/pkg/hashtable"
)

// maxTextKeyLen bounds the key length accepted from a text dump.
const maxTextKeyLen = 64 << 20

func encodeText(w io.Writer, t *hashtable.Table) error {
	bw := bufio.NewWriter(w)
	var err error
	t.Range(func(key []byte, v hashtable.Value) bool {
		var val string
		val, err = textValue(v)
		if err != nil {
			err = fmt.Errorf("%w: key %q", err, key)
			return false
		}
		bw.WriteString(strconv.Itoa(len(key)))
		bw.WriteByte(' ')
		bw.Write(key)
		bw.WriteByte(' ')
		bw.WriteString(strconv.Itoa(int(v.Kind())))
		bw.WriteByte(' ')
		bw.WriteString(val)
		_, err = bw.WriteString("\n")
		return err == nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func textValue(v hashtable.Value) (string, error) {
	switch v.Kind() {
	case hashtable.KindText:
		if strings.ContainsRune(v.Text(), '\n') {
			return "", ErrUnencodable
		}
		return v.Text(), nil
	case hashtable.KindUint:
		return strconv.FormatUint(v.Uint(), 10), nil
	case hashtable.KindInt:
		return strconv.FormatInt(v.Int(), 10), nil
	case hashtable.KindFloat:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	}
	return "", ErrUnencodable
}

func scanText(r io.Reader, fn func(Record) error) error {
	br := bufio.NewReader(r)
	for line := 1; ; line++ {
		rec, err := readTextRecord(br)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("codec: text line %d: %w", line, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// readTextRecord parses "<keylen> <key> <tag> <value>\n". A final record
// without a trailing newline is accepted.
func readTextRecord(br *bufio.Reader) (Record, error) {
	lenField, err := br.ReadString(' ')
	if err == io.EOF && lenField == "" {
		return Record{}, io.EOF
	}
	if err != nil {
		return Record{}, unexpected(err)
	}
	keyLen, err := strconv.Atoi(strings.TrimSuffix(lenField, " "))
	if err != nil || keyLen < 0 || keyLen > maxTextKeyLen {
		return Record{}, fmt.Errorf("%w: bad key length %q", ErrCorrupted, lenField)
	}

	key := make([]byte, keyLen)
	if _, err := io.ReadFull(br, key); err != nil {
		return Record{}, unexpected(err)
	}
	if sep, err := br.ReadByte(); err != nil || sep != ' ' {
		return Record{}, fmt.Errorf("%w: missing separator after key", ErrCorrupted)
	}

	tagField, err := br.ReadString(' ')
	if err != nil {
		return Record{}, unexpected(err)
	}
	tag, err := strconv.Atoi(strings.TrimSuffix(tagField, " "))
	if err != nil || !hashtable.Kind(tag).Valid() {
		return Record{}, fmt.Errorf("%w: bad type tag %q", ErrCorrupted, tagField)
	}

	raw, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return Record{}, err
	}
	raw = strings.TrimSuffix(raw, "\n")

	v, err := parseTextValue(hashtable.Kind(tag), raw)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return Record{Key: key, Value: v}, nil
}

func parseTextValue(k hashtable.Kind, raw string) (hashtable.Value, error) {
	if k == hashtable.KindUint && strings.HasPrefix(raw, "-") {
		// Older dumps printed unsigned values through a signed conversion.
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return hashtable.None, err
		}
		return hashtable.NewUint(uint64(i)), nil
	}
	return hashtable.ParseValue(k, raw)
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
