package creators

// ClassifyKind tags the outcome of a classifier call.
type ClassifyKind int

const (
	ClassifySuccess ClassifyKind = iota
	ClassifyRateLimited
	ClassifyFailed
)

func (k ClassifyKind) String() string {
	switch k {
	case ClassifySuccess:
		return "success"
	case ClassifyRateLimited:
		return "rate_limited"
	case ClassifyFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ClassifyResult is the tagged outcome of classifying one video.
// Raw holds the unparsed model output on success; Reason is set on failure.
type ClassifyResult struct {
	Kind     ClassifyKind
	Analysis Analysis
	Raw      string
	Reason   string
}

func Classified(raw string) ClassifyResult {
	return ClassifyResult{Kind: ClassifySuccess, Raw: raw, Analysis: ParseAnalysis([]byte(raw))}
}

func RateLimited(reason string) ClassifyResult {
	return ClassifyResult{Kind: ClassifyRateLimited, Reason: reason}
}

func ClassifyFailure(reason string) ClassifyResult {
	return ClassifyResult{Kind: ClassifyFailed, Reason: reason}
}
