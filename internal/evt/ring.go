package evt

// Pure position arithmetic for the circular region [HeaderLength,
// fileLen). Keeping it side-effect free makes the off-by-one-prone
// cases testable in isolation.

// freeSpace reports how many bytes can still be written at end before
// running into start.
func freeSpace(start, end, fileLen int64, empty bool) int64 {
	switch {
	case empty:
		return fileLen - HeaderLength
	case end > start:
		return (fileLen - end) + (start - HeaderLength)
	case end < start:
		return start - end
	default:
		return 0
	}
}

// blockCost models writing one block of size bytes at end.
// minContiguous is the prefix that must not split: the 56-byte header
// for records, the whole block for the end-of-log marker. When the
// run to the end of the file cannot hold that prefix, the run is
// consumed by filler and the block moves to just past the log header.
// It returns the bytes of ring space consumed (block plus any filler),
// the position following the block, and whether the ring end was
// crossed.
func blockCost(end, fileLen, size, minContiguous int64) (cost, newEnd int64, wrapped bool) {
	endSpace := fileLen - end
	switch {
	case endSpace < minContiguous:
		return size + endSpace, HeaderLength + size, true
	case endSpace < size:
		return size, HeaderLength + (size - endSpace), true
	default:
		return size, end + size, false
	}
}

// simulateWrite decides whether a block of size bytes fits at end
// without evicting anything, and where the write position would land.
func simulateWrite(start, end, fileLen, size, minContiguous int64, empty bool) (int64, bool) {
	cost, newEnd, _ := blockCost(end, fileLen, size, minContiguous)
	return newEnd, cost <= freeSpace(start, end, fileLen, empty)
}

// advanceStart computes the start offset after deleting the first
// record. endSpace may come out negative when the first record wraps;
// the remainder past the ring end is then its tail length after the
// log header.
func advanceStart(start, firstLen, fileLen int64) int64 {
	endSpace := fileLen - start - firstLen
	switch {
	case endSpace < 0:
		return HeaderLength + (-endSpace)
	case endSpace < RecordHeaderLength:
		// Nothing could have been written behind the record.
		return HeaderLength
	default:
		return start + firstLen
	}
}
