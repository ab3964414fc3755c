package cache

import "hash/fnv"

// Fingerprint hashes s with fnv-1a.
func Fingerprint(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Mix64 combines two fingerprints.
func Mix64(a, b uint64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(u64ToBytes(a))
	_, _ = h.Write(u64ToBytes(b))
	return h.Sum64()
}

func u64ToBytes(u uint64) []byte {
	return []byte{
		byte(u >> 56), byte(u >> 48), byte(u >> 40), byte(u >> 32),
		byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u),
	}
}
