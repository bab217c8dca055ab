package learn

// splitmix64 is the finalizer of the splitmix64 generator. It is stable
// across platforms and processes, which keeps replay seeds reproducible.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// deriveSeed produces the environment seed for one evaluation iteration.
// Repeating a generation over the same root therefore replays the exact same
// episodes.
func deriveSeed(generation, iteration uint64) uint64 {
	return splitmix64(generation) ^ splitmix64(iteration)
}
