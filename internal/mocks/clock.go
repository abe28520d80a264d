package mocks

import "time"

// FixedClock always returns T.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// FixedIDs hands out Suffix on every call.
type FixedIDs struct{ Suffix string }

func (f FixedIDs) NewSuffix() string { return f.Suffix }
