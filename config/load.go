package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/mcpkit/pkg/types"
)

// Stamp identifies the exact on-disk content a document was loaded from.
// The transaction executor compares stamps before committing to detect
// concurrent external edits.
type Stamp struct {
	Size    int64
	ModTime time.Time
	Hash    string // hex SHA-256 of the file bytes
}

// IsZero reports whether the stamp describes a missing file.
func (s Stamp) IsZero() bool {
	return s.Size == 0 && s.ModTime.IsZero() && s.Hash == ""
}

// Equal reports whether two stamps identify the same content. The content
// hash is authoritative; size and mtime decide only when either hash is
// absent.
func (s Stamp) Equal(o Stamp) bool {
	if s.Hash != "" && o.Hash != "" {
		return s.Hash == o.Hash
	}
	return s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

// StampFile captures the stamp of the file at path. A missing file yields
// the zero stamp and no error.
func StampFile(path string) (Stamp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Stamp{}, nil
		}
		return Stamp{}, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("read %s", path), Err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Stamp{}, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("stat %s", path), Err: err}
	}
	return stampOf(data, info.ModTime()), nil
}

func stampOf(data []byte, mtime time.Time) Stamp {
	sum := sha256.Sum256(data)
	return Stamp{Size: int64(len(data)), ModTime: mtime, Hash: hex.EncodeToString(sum[:])}
}

// Load reads the document at path. A missing file loads as an empty document
// whose first commit will create the file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			doc := New()
			doc.path = path
			return doc, nil
		}
		return nil, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("read %s", path), Err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("stat %s", path), Err: err}
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	doc.path = path
	doc.stamp = stampOf(data, info.ModTime())
	return doc, nil
}

// ParseExternal builds a document from JSON produced by other tools. It
// tolerates UTF-8 and UTF-16 byte-order marks, transcoding to UTF-8 before
// parsing. Used by import, never by Load: the desktop application always
// writes plain UTF-8.
func ParseExternal(data []byte) (*Document, error) {
	decoded, err := decodeBOM(data)
	if err != nil {
		return nil, err
	}
	return Parse(decoded)
}

func decodeBOM(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		// UseBOM lets the decoder pick the endianness from the mark itself.
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, &types.Error{Kind: types.ErrKindFormat, Msg: "decode UTF-16 payload", Err: err}
		}
		return out, nil
	default:
		return data, nil
	}
}
