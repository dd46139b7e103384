package env

import (
	"errors"
	"fmt"
	"os"
)

// LookupFunc returns the value of a variable and whether it was set.
// os.LookupEnv satisfies it.
type LookupFunc func(name string) (string, bool)

// ConfigurationError reports a required variable that is unset or empty.
type ConfigurationError struct {
	Name string
}

func (e *ConfigurationError) Error() string {
	return "missing environment variable: " + e.Name
}

// IsConfigurationError reports whether err carries a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// Require returns the value of name from the process environment.
func Require(name string) (string, error) {
	return RequireFrom(os.LookupEnv, name)
}

// RequireFrom resolves name through lookup. An empty value counts as missing.
func RequireFrom(lookup LookupFunc, name string) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(name)
	if !ok || value == "" {
		return "", &ConfigurationError{Name: name}
	}
	return value, nil
}

// MustRequire is like Require but panics when the variable is missing.
// It is meant for package-level initialisation in test mains.
func MustRequire(name string) string {
	value, err := Require(name)
	if err != nil {
		panic(err)
	}
	return value
}

// RequireAll resolves every name and returns the values keyed by name.
// All missing names are reported together, each as a *ConfigurationError.
func RequireAll(lookup LookupFunc, names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	var errs []error
	for _, name := range names {
		value, err := RequireFrom(lookup, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values[name] = value
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return values, nil
}

// MapLookup adapts a map to a LookupFunc.
func MapLookup(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// Describe formats a variable for display, masking secrets when asked.
func Describe(name, value string, secret bool) string {
	if secret && value != "" {
		if len(value) <= 4 {
			value = "****"
		} else {
			value = value[:4] + "****"
		}
	}
	return fmt.Sprintf("%s=%s", name, value)
}
