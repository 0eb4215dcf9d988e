package core

type (
	// Logger is implemented by the application loggers.
	// args may carry errors, extra maps and at most one Person.
	Logger interface {
		Debug(msg string, args ...interface{})
		Info(msg string, args ...interface{})
		Warn(msg string, args ...interface{})
		Error(msg string, args ...interface{})
		Fatal(msg string, args ...interface{})
	}

	// Person identifies the authenticated caller attached to a log entry.
	Person struct {
		ID    string
		Name  string
		Email string
	}
)
