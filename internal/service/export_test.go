package service

import "time"

// SetClock overrides the time source of services that stamp or bucket by
// the current time.
func SetClock(svc interface{}, now func() time.Time) {
	switch s := svc.(type) {
	case *workSessionService:
		s.now = now
	case *dashboardService:
		s.now = now
	}
}
