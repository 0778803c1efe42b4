package launch

import "fmt"

// ErrorKind classifies why a launch could not be resolved.
type ErrorKind int

const (
	InvalidArguments ErrorKind = iota
	FolderMissing
	PortUnavailable
	Aborted
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidArguments:
		return "invalid arguments"
	case FolderMissing:
		return "folder missing"
	case PortUnavailable:
		return "port unavailable"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ConfigurationError is returned by Resolve. The process reports it and exits
// without starting an engine.
type ConfigurationError struct {
	Kind  ErrorKind
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	var msg string
	switch e.Kind {
	case InvalidArguments:
		msg = Usage
		if e.Value != "" {
			msg = fmt.Sprintf("invalid argument %q. %s", e.Value, Usage)
		}
	case FolderMissing:
		msg = fmt.Sprintf("Path %s does not exist.", e.Value)
	case PortUnavailable:
		msg = fmt.Sprintf("Port %s is not available.", e.Value)
	case Aborted:
		msg = "no folder selected"
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is matches another *ConfigurationError of the same Kind, so callers can
// write errors.Is(err, &ConfigurationError{Kind: Aborted}).
func (e *ConfigurationError) Is(target error) bool {
	t, ok := target.(*ConfigurationError)
	return ok && t.Kind == e.Kind
}
