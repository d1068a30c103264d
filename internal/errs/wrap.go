package errs

import "fmt"

// Wrap chains ext under base so callers can match either with errors.Is.
func Wrap(base, ext error) error {
	if ext == nil {
		return base
	}

	return fmt.Errorf("%w: %w", base, ext)
}

// Wrapf annotates base with a formatted detail message.
func Wrapf(base error, format string, args ...any) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s", base, format)
	}

	return fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...))
}
