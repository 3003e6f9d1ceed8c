package workers

import "errors"

var ErrInvalidSchedule = errors.New("invalid worker schedule")
