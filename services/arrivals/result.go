package arrivals

// ResultKind is the terminal state of a retrieval.
type ResultKind int

const (
	// ResultSuccess holds the extracted records.
	ResultSuccess ResultKind = iota
	// ResultFetchFailed means the page could not be retrieved; Err holds the cause.
	ResultFetchFailed
	// ResultRouteNotFound means the widget was parsed but has no entry for the requested route.
	ResultRouteNotFound
	// ResultExhausted means every attempt came back without a usable widget.
	ResultExhausted
)

// String presents the caller with a human readable version of this enum.
func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultFetchFailed:
		return "fetch_failed"
	case ResultRouteNotFound:
		return "route_not_found"
	case ResultExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result is the outcome of a retrieval. Only the fields relevant to Kind are set.
type Result struct {
	Kind ResultKind

	Records     []ArrivalRecord
	RouteNumber string
	Attempts    int
	Err         error
}
