package providers

// Notifier delivers user-visible transient notifications (the toast channel
// of the web client). Services call it on login/logout, submission results
// and validation failures; implementations must never block or fail loudly.
type Notifier interface {
	Success(message string)
	Error(message string)
}
