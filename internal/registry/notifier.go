package registry

// Notifier is the side channel upload/delete outcomes are reported on. The
// chat binary installs a colored terminal notifier; tests install a
// recording fake.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
