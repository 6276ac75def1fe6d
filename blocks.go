package trimerge

// matchBlock asserts x[XOff:XOff+Len] == y[YOff:YOff+Len] for the two
// sequences it was derived from.
type matchBlock struct {
	XOff, YOff, Len int
}

// matchingBlocks turns a change list into the complementary list of
// maximal matching blocks: ascending in XOff, non-overlapping, terminated
// by a zero-length sentinel at the end-of-sequence positions.
func matchingBlocks(changes []Change, lenX, lenY int) []matchBlock {
	blocks := make([]matchBlock, 0, len(changes)+2)
	x, y := 0, 0
	for _, ch := range changes {
		if ch.P1 > x {
			blocks = append(blocks, matchBlock{XOff: x, YOff: y, Len: ch.P1 - x})
		}
		x = ch.P1 + ch.Del
		y = ch.P2 + ch.Ins
	}
	if x < lenX {
		blocks = append(blocks, matchBlock{XOff: x, YOff: y, Len: lenX - x})
	}
	blocks = append(blocks, matchBlock{XOff: lenX, YOff: lenY})
	return blocks
}

// intersect returns the open-top overlap of [lo1,hi1) and [lo2,hi2), or
// ok=false when the ranges do not overlap.
func intersect(lo1, hi1, lo2, hi2 int) (lo, hi int, ok bool) {
	lo = max(lo1, lo2)
	hi = min(hi1, hi2)
	if lo < hi {
		return lo, hi, true
	}
	return 0, 0, false
}
