package correction

import "errors"

// ErrNoExecutor — use case создан без executor.
var ErrNoExecutor = errors.New("correction use case requires an executor")
