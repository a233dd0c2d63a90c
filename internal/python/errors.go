package python

import "errors"

var (
	// ErrInterpreterMissing indicates no usable Python 3 interpreter was found.
	ErrInterpreterMissing = errors.New("python interpreter not found")

	// ErrEnvMissing indicates the virtual environment has not been created yet.
	ErrEnvMissing = errors.New("virtual environment does not exist")

	// ErrEnvCreationFailed indicates virtual environment creation failed.
	ErrEnvCreationFailed = errors.New("virtual environment creation failed")

	// ErrEnvCorrupted indicates the environment directory exists but its
	// interpreter entry point is missing.
	ErrEnvCorrupted = errors.New("virtual environment is corrupted")

	// ErrPipMissing indicates pip is unavailable and could not be repaired.
	ErrPipMissing = errors.New("pip is not available")
)

// IsEnvMissing returns true if the error is ErrEnvMissing.
func IsEnvMissing(err error) bool {
	return errors.Is(err, ErrEnvMissing)
}
