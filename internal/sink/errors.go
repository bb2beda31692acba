package sink

import "errors"

// ErrUnsupportedRecord — transformed-значение не реализует Record.
var ErrUnsupportedRecord = errors.New("transformed data does not implement sink.Record")
