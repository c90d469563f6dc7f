package traffic

import (
	"github.com/jusunglee/bikeshare-go/internal/models"
)

// Window returns the half-open bucket range [start, end) centered on minute.
// start > end means the range wraps past midnight. The width is always 120.
func Window(minute int) (start, end int) {
	start = (minute - WindowRadius + MinutesPerDay) % MinutesPerDay
	end = (minute + WindowRadius) % MinutesPerDay
	return start, end
}

// FilterByMinute returns the trips in the window around minute, ordered by
// bucket and then by insertion order. AnyTime returns every trip.
// minute must satisfy ValidMinute.
func FilterByMinute(b *Buckets, minute int) []*models.Trip {
	if minute == AnyTime {
		return concat(b, 0, MinutesPerDay, nil)
	}

	start, end := Window(minute)
	if start > end {
		out := concat(b, start, MinutesPerDay, nil)
		return concat(b, 0, end, out)
	}
	return concat(b, start, end, nil)
}

func concat(b *Buckets, from, to int, out []*models.Trip) []*models.Trip {
	if out == nil {
		n := 0
		for i := from; i < to; i++ {
			n += len(b[i])
		}
		out = make([]*models.Trip, 0, n)
	}
	for i := from; i < to; i++ {
		out = append(out, b[i]...)
	}
	return out
}
