package terrain

import "math"

// Deterministic 2D value noise with multiple octaves, keyed by integer hashing
// of lattice points.

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// hash2 is a SplitMix64-style hash, stable across runs for the same inputs.
func hash2(x, z, seed int64) uint64 {
	v := uint64(x) + (uint64(z) << 1) + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func latticeValue(x, z, seed int64) float64 {
	return float64(hash2(x, z, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// valueNoise2D returns smooth noise in [0,1].
func valueNoise2D(x, z float64, seed int64) float64 {
	x0 := math.Floor(x)
	z0 := math.Floor(z)

	fx := fade(x - x0)
	fz := fade(z - z0)

	v00 := latticeValue(int64(x0), int64(z0), seed)
	v10 := latticeValue(int64(x0)+1, int64(z0), seed)
	v01 := latticeValue(int64(x0), int64(z0)+1, seed)
	v11 := latticeValue(int64(x0)+1, int64(z0)+1, seed)

	return lerp(lerp(v00, v10, fx), lerp(v01, v11, fx), fz)
}

// octaveNoise2D sums octaves of value noise, normalised back to [0,1].
func octaveNoise2D(x, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := range octaves {
		sum += valueNoise2D(x*frequency, z*frequency, seed+int64(i*131)) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
