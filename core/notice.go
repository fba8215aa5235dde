package core

// Notice levels
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notice is a transient, user-visible message.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Notifier surfaces notices to the user (console, page banner...).
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a func to a Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }
