package guard

import "time"

const (
	DefaultBaseUnit = 10 * time.Minute
	DefaultCap      = 24 * time.Hour
)

// Policy maps a violation count to a timeout length: count*BaseUnit, capped.
type Policy struct {
	BaseUnit time.Duration
	Cap      time.Duration
}

func DefaultPolicy() Policy {
	return Policy{BaseUnit: DefaultBaseUnit, Cap: DefaultCap}
}

func (p Policy) Duration(count int) time.Duration {
	if count <= 0 || p.BaseUnit <= 0 {
		return 0
	}
	if p.Cap <= 0 {
		return 0
	}
	// count*BaseUnit would overflow long before reaching the cap check
	if int64(count) >= int64(p.Cap/p.BaseUnit)+1 {
		return p.Cap
	}
	return min(time.Duration(count)*p.BaseUnit, p.Cap)
}
