package tracer

// Per-pixel random streams are xorshift32 generators. Stream i is seeded by
// hashing the session seed with the pixel index; each pass salts the stored
// state with the pass number before drawing from it and writes the advanced
// state back, so consecutive frames draw decorrelated samples.

// Replacement for states that hash to zero; xorshift32 never leaves zero.
const zeroStateReplacement uint32 = 0x6d2b79f5

// Finalizer from murmur3 applied after a golden ratio increment.
func mix32(x uint32) uint32 {
	x += 0x9e3779b9
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return x
}

func nonZero(state uint32) uint32 {
	if state == 0 {
		return zeroStateReplacement
	}
	return state
}

// Seed one stream per element of states.
func SeedStreams(states []uint32, seed uint32) {
	seedHash := mix32(seed)
	for index := range states {
		states[index] = nonZero(mix32(seedHash ^ mix32(uint32(index))))
	}
}

// Salt a stream state with the pass sequence number.
func SaltStream(state, pass uint32) uint32 {
	return nonZero(state ^ mix32(pass))
}

// Advance a stream and return the next value.
func NextRandom(state *uint32) uint32 {
	x := *state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	*state = x
	return x
}

// Advance a stream and return a float in [0, 1).
func RandomFloat(state *uint32) float32 {
	return float32(NextRandom(state)>>8) / float32(1<<24)
}
