// Package probity computes deterministic content checksums over in-memory
// tables so that two independently produced tables are comparable by hash
// alone. A destination checksum recorded on a transform, together with the
// crosswalk and the source checksum, proves the destination was
// deterministically produced from that source.
package probity

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Checksum hashes a canonical serialization of the table with BLAKE2b-256.
// Column order, row order, and cell text are all included: reordering
// columns or rows changes the checksum. Every field is length-prefixed so
// adjacent values can never alias.
func Checksum(t *tabular.Table) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}

	var scratch [8]byte
	writeUint := func(n uint64) {
		binary.BigEndian.PutUint64(scratch[:], n)
		h.Write(scratch[:])
	}
	writeText := func(s string) {
		writeUint(uint64(len(s)))
		h.Write([]byte(s))
	}

	names := t.ColumnNames()
	writeUint(uint64(len(names)))
	for _, name := range names {
		writeText(name)
	}

	writeUint(uint64(t.Len()))
	for row := 0; row < t.Len(); row++ {
		for _, v := range t.Row(row) {
			if v == nil {
				// Distinguish null from empty string.
				writeUint(^uint64(0))
				continue
			}
			writeText(schema.CanonicalText(v))
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// MismatchError reports a failed replay validation: re-executing the
// crosswalk against the named source produced a destination whose checksum
// differs from the recorded one.
type MismatchError struct {
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: recorded %s, recomputed %s", e.Expected, e.Actual)
}

// Compare asserts two checksums are equal, returning a MismatchError
// otherwise.
func Compare(expected, actual string) error {
	if expected != actual {
		return &MismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
