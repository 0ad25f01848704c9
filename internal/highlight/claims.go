package highlight

// claimSet is a bitmap over the byte offsets of the fixed text. A set bit
// means an earlier section already owns that offset.
type claimSet struct {
	bits []uint64
	size int
}

func newClaimSet(size int) *claimSet {
	return &claimSet{bits: make([]uint64, (size+63)/64), size: size}
}

// free reports whether no offset in [start, end) is claimed.
func (c *claimSet) free(start, end int) bool {
	if start < 0 || end > c.size {
		return false
	}
	for i := start; i < end; i++ {
		if c.bits[i>>6]&(1<<(uint(i)&63)) != 0 {
			return false
		}
	}
	return true
}

func (c *claimSet) claim(start, end int) {
	for i := start; i < end; i++ {
		c.bits[i>>6] |= 1 << (uint(i) & 63)
	}
}
