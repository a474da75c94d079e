package usecase

import "time"

// SetNow overrides the rollover clock in tests.
func (uc *RolloverUseCase) SetNow(now func() time.Time) {
	uc.now = now
}
