package tpresenter

import "errors"

// ErrDestroyed is returned when starting a delivery
// on a Presenter that has been destroyed.
// It is also the cancellation cause observed by deliveries
// that were still running when the Presenter was destroyed.
var ErrDestroyed = errors.New("presenter destroyed")
