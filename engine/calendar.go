package engine

import "time"

const day = 24 * time.Hour

// startOfDay strips the time of day in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// sameDay compares calendar dates in the location of ref.
func sameDay(t, ref time.Time) bool {
	y1, m1, d1 := t.In(ref.Location()).Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// daysBetween counts whole calendar days from a to b in b's location. DST
// shifts do not affect the count.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from) / day)
}

// sameISOWeek compares ISO-8601 year and week number in the location of ref.
func sameISOWeek(t, ref time.Time) bool {
	y1, w1 := t.In(ref.Location()).ISOWeek()
	y2, w2 := ref.ISOWeek()
	return y1 == y2 && w1 == w2
}

// elapsedDays is the fractional number of days from a to b.
func elapsedDays(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}
