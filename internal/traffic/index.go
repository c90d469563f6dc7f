package traffic

import (
	"github.com/jusunglee/bikeshare-go/internal/models"
)

// Buckets holds trips grouped by minute of day
type Buckets [MinutesPerDay][]*models.Trip

// Size returns the number of trips across all buckets
func (b *Buckets) Size() int {
	n := 0
	for i := range b {
		n += len(b[i])
	}
	return n
}

// Index is the per-minute departure and arrival index of a trip dataset.
// It is built once and read-only afterwards, so it may be shared freely.
type Index struct {
	departures Buckets
	arrivals   Buckets
	trips      int
	rejected   int
}

// NewIndex buckets trips by start minute (departures) and end minute (arrivals).
// Trips are placed by reference. A trip missing either timestamp is rejected
// rather than landing in bucket 0.
func NewIndex(trips []*models.Trip) *Index {
	idx := &Index{}
	for _, trip := range trips {
		if trip == nil || trip.StartedAt.IsZero() || trip.EndedAt.IsZero() {
			idx.rejected++
			continue
		}
		start := MinuteOf(trip.StartedAt)
		idx.departures[start] = append(idx.departures[start], trip)

		end := MinuteOf(trip.EndedAt)
		idx.arrivals[end] = append(idx.arrivals[end], trip)

		idx.trips++
	}
	return idx
}

// Departures returns trips bucketed by start minute
func (idx *Index) Departures() *Buckets {
	return &idx.departures
}

// Arrivals returns trips bucketed by end minute
func (idx *Index) Arrivals() *Buckets {
	return &idx.arrivals
}

// Len returns the number of indexed trips
func (idx *Index) Len() int {
	return idx.trips
}

// Rejected returns the number of trips left out of the index
func (idx *Index) Rejected() int {
	return idx.rejected
}
