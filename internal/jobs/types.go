package jobs

// Known job types. Anything else is rejected at enqueue and at execution.
const (
	TypeWelcomeNotification = "welcome.notification"
)

func IsValidType(t string) bool {
	switch t {
	case TypeWelcomeNotification:
		return true
	default:
		return false
	}
}
