package model

// KeyForTests builds a key with explicit hash components, letting db tests
// target specific shards.
func KeyForTests(v, hi, lo uint64) *Key {
	return &Key{v: v, hi: hi, lo: lo}
}
