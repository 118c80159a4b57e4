package status

import "time"

// Freshness říká, jestli zařízení v poslední době komunikovalo.
type Freshness int

const (
	Inactive Freshness = iota
	Active
)

func (f Freshness) String() string {
	if f == Active {
		return "active"
	}
	return "inactive"
}

// Classify: zařízení je aktivní právě tehdy, když lastSeen existuje
// a od now je vzdálené méně než window. Nil i staré hodnoty jsou Inactive.
func Classify(lastSeen *time.Time, now time.Time, window time.Duration) Freshness {
	if lastSeen == nil {
		return Inactive
	}
	if now.Sub(*lastSeen) < window {
		return Active
	}
	return Inactive
}
