// Package fingerprint derives a compact value from a set of orders so two
// snapshots can be compared without deep equality. FNV-1a is deliberate:
// change detection needs determinism and speed, not collision resistance.
package fingerprint

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"math"
	"strconv"

	"github.com/mrodrigc/campuseats-client/models"
)

// Empty is the stable fingerprint of an empty order list. It is distinct from
// the zero value "" so "no orders" can be told apart from "not yet fetched".
const Empty = "empty"

// Fingerprint hashes the identity, status and total of every order in input
// order. Any change in one of those fields for any order changes the result.
func Fingerprint(orders []models.Order) string {
	if len(orders) == 0 {
		return Empty
	}

	h := fnv.New64a()
	var buf [8]byte
	for _, o := range orders {
		_, _ = io.WriteString(h, o.Key())
		_, _ = io.WriteString(h, "|")
		_, _ = io.WriteString(h, string(o.Status))
		_, _ = io.WriteString(h, "|")
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(o.Total))
		_, _ = h.Write(buf[:])
	}

	return strconv.FormatUint(h.Sum64(), 16)
}

// Changed reports whether two fingerprints differ.
func Changed(prev, next string) bool {
	return prev != next
}
