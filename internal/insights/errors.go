package insights

import "errors"

// ErrAIDisabled is returned when an analysis needs a model but none is configured.
var ErrAIDisabled = errors.New("ai features are disabled")
