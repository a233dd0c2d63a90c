package provision

import "errors"

// ErrCriticalDependency indicates the designated critical dependency could
// not be installed. Unlike every other package, there is no unpinned
// fallback: the workflow halts immediately.
var ErrCriticalDependency = errors.New("critical dependency install failed")
