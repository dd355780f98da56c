package keysetpager

const (
	NoLimit      = -1
	MaxLimit     = 100
	DefaultLimit = 10
)

// IsNormalizedLimitMax clamps limit into [1, maxLimit]. Non-positive limits
// fall back to DefaultLimit (itself capped by maxLimit). The boolean reports
// whether limit was already valid.
func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	if limit <= 0 {
		return min(DefaultLimit, maxLimit), false
	} else if limit > maxLimit {
		return maxLimit, false
	}

	return limit, true
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxLimit)
}

// resolvePageSize picks the page size and paging edge out of first/last.
// Forward paging with DefaultLimit is used when neither is given. An explicit
// zero asks for an empty page that still reports whether rows exist.
func resolvePageSize(args PageArgs, maxLimit int) (int, Edge, error) {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}

	switch {
	case args.First != nil && args.Last != nil:
		return 0, EdgeAfter, newValidationError("first and last cannot be combined")
	case args.First != nil && *args.First < 0:
		return 0, EdgeAfter, newValidationError("first must not be negative, got %d", *args.First)
	case args.Last != nil && *args.Last < 0:
		return 0, EdgeBefore, newValidationError("last must not be negative, got %d", *args.Last)
	case args.Last != nil && *args.Last == 0:
		return 0, EdgeBefore, nil
	case args.First != nil && *args.First == 0:
		return 0, EdgeAfter, nil
	case args.Last != nil:
		return NormalizeLimitMax(*args.Last, maxLimit), EdgeBefore, nil
	case args.First != nil:
		return NormalizeLimitMax(*args.First, maxLimit), EdgeAfter, nil
	default:
		return NormalizeLimitMax(DefaultLimit, maxLimit), EdgeAfter, nil
	}
}
