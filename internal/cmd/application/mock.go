package application

import (
	"github.com/rs/zerolog"

	"github.com/placelink/placelink/internal/config"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    CredentialsFunc: func() config.Credentials {
//	        return config.Credentials{Wikidata: config.Wikidata{APIURL: srv.URL}}
//	    },
//	}
//	cmd := push.NewCommand(mock)
type Mock struct {
	LoggerFunc       func() *zerolog.Logger
	CredentialsFunc  func() config.Credentials
	OutputFormatFunc func() string
	QuietFunc        func() bool
	NoColorFunc      func() bool
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// Credentials returns credentials using the mock function or empty ones.
func (m *Mock) Credentials() config.Credentials {
	if m.CredentialsFunc != nil {
		return m.CredentialsFunc()
	}
	return config.Credentials{}
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Quiet returns the mock function's value or true.
func (m *Mock) Quiet() bool {
	if m.QuietFunc != nil {
		return m.QuietFunc()
	}
	return true
}

// NoColor returns the mock function's value or true.
func (m *Mock) NoColor() bool {
	if m.NoColorFunc != nil {
		return m.NoColorFunc()
	}
	return true
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
