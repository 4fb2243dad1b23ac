package activity

import "fmt"

// ConnectionState is the kind of a ConnectionStatus.
type ConnectionState int

const (
	StateNotConfigured ConnectionState = iota
	StateConnected
	StateWarning
	StateError
)

// ConnectionStatus is the outcome of a platform health probe. It is used for
// diagnostics only; fetch eligibility is governed by IsConfigured.
type ConnectionStatus struct {
	State  ConnectionState
	Reason string
}

// Connected returns a healthy status.
func Connected() ConnectionStatus { return ConnectionStatus{State: StateConnected} }

// Warning returns a soft failure such as a timeout.
func Warning(reason string) ConnectionStatus {
	return ConnectionStatus{State: StateWarning, Reason: reason}
}

// Error returns a hard failure such as bad credentials.
func Error(reason string) ConnectionStatus {
	return ConnectionStatus{State: StateError, Reason: reason}
}

// NotConfigured returns the status of a platform with no configuration.
func NotConfigured() ConnectionStatus { return ConnectionStatus{State: StateNotConfigured} }

// IsOK reports whether the status is Connected.
func (s ConnectionStatus) IsOK() bool { return s.State == StateConnected }

// Icon returns the glyph for the status.
func (s ConnectionStatus) Icon() string {
	switch s.State {
	case StateConnected:
		return "✅"
	case StateWarning:
		return "⚠️"
	case StateError:
		return "❌"
	default:
		return "⚪"
	}
}

func (s ConnectionStatus) String() string {
	switch s.State {
	case StateConnected:
		return "Connected"
	case StateWarning:
		return fmt.Sprintf("Warning: %s", s.Reason)
	case StateError:
		return fmt.Sprintf("Error: %s", s.Reason)
	default:
		return "Not configured"
	}
}
