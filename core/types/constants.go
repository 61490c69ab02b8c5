package types

// BasisPoints is the denominator of every rate in the engine: 10000 = 100%.
const BasisPoints = 10000

// SecondsPerDay is the calendar-day length used for daily limit resets.
const SecondsPerDay = 86400

// Day returns the calendar day index of a unix timestamp.
func Day(unix uint64) uint64 {
	return unix / SecondsPerDay
}
