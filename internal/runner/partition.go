package runner

// Range is a half-open interval [Start, End) of record identifiers owned by
// exactly one worker.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of identifiers in the range.
func (r Range) Len() int64 {
	return r.End - r.Start
}

// Empty reports whether the range assigns no work.
func (r Range) Empty() bool {
	return r.Start >= r.End
}

// Partition splits [0, total) into workers contiguous, non-overlapping
// ranges whose union covers the interval exactly. The split is as even as
// possible: when total is not divisible by workers, the first total mod
// workers ranges carry one extra identifier. When total < workers the excess
// workers receive empty ranges rather than being skipped, so callers always
// see exactly workers outcomes.
//
// Deterministic: the same (total, workers) always yields the same partition.
func Partition(total int64, workers int) []Range {
	if workers < 1 {
		return nil
	}

	base := total / int64(workers)
	extra := total % int64(workers)

	ranges := make([]Range, workers)
	var start int64
	for i := range ranges {
		n := base
		if int64(i) < extra {
			n++
		}
		ranges[i] = Range{Start: start, End: start + n}
		start += n
	}
	return ranges
}
