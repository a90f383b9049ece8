package compute

import "errors"

var (
	ErrNotFound        = errors.New("compute resource not found")
	ErrInvalidResponse = errors.New("compute backend returned invalid response")
)
