package hashtable

import (
	"encoding/binary"

	"github.com/dchest/siphash"
)

// hashKey is the fixed SipHash key. It is not randomized per process so bucket
// placement and dump ordering are reproducible across runs.
var hashKey = [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

var (
	k0 = binary.LittleEndian.Uint64(hashKey[0:8])
	k1 = binary.LittleEndian.Uint64(hashKey[8:16])
)

// Hash returns the SipHash-2-4 digest of key under the table's fixed key.
func Hash(key []byte) uint64 {
	return siphash.Hash(k0, k1, key)
}

func hashString(key string) uint64 {
	return siphash.Hash(k0, k1, []byte(key))
}
