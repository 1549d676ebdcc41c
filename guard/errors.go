package guard

import "errors"

// Failures are contained to the event that caused them. Each class has its own
// policy in Guard.Handle:
//   - storage: the detection pass for the event stops, nothing is enforced
//   - enforcement: logged and reported to the notification channel, the
//     ledger increment stays
//   - notification: logged only
var (
	ErrStorage      = errors.New("guard: storage failure")
	ErrEnforcement  = errors.New("guard: enforcement failure")
	ErrNotification = errors.New("guard: notification failure")
)
