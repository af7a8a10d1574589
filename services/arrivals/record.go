package arrivals

import (
	"strings"
)

// ArrivalRecord is one route's arrival status at the queried stop.
// A record is a value; once created none of its fields change.
type ArrivalRecord struct {
	routeNumber  string
	routeName    string
	arrivalTimes []string
}

// NewArrivalRecord creates a record, copying the supplied arrival times.
func NewArrivalRecord(routeNumber string, routeName string, arrivalTimes []string) ArrivalRecord {
	times := make([]string, len(arrivalTimes))
	copy(times, arrivalTimes)

	return ArrivalRecord{
		routeNumber:  routeNumber,
		routeName:    routeName,
		arrivalTimes: times,
	}
}

// RouteNumber is the short route identifier, i.e. "107".
func (r ArrivalRecord) RouteNumber() string {
	return r.routeNumber
}

// RouteName is the destination label of the route.
func (r ArrivalRecord) RouteName() string {
	return r.routeName
}

// ArrivalTimes returns the time labels in source order, soonest first.
func (r ArrivalRecord) ArrivalTimes() []string {
	times := make([]string, len(r.arrivalTimes))
	copy(times, r.arrivalTimes)
	return times
}

// HasTimes is true if at least one arrival time was found for this route.
func (r ArrivalRecord) HasTimes() bool {
	return len(r.arrivalTimes) > 0
}

// Line renders the record as a single presentation line.
func (r ArrivalRecord) Line() string {
	return r.routeNumber + " – " + r.routeName + ": " + strings.Join(r.arrivalTimes, ", ")
}

// String implements fmt.Stringer.
func (r ArrivalRecord) String() string {
	return r.Line()
}
