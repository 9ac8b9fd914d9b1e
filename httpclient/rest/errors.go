package rest

import (
	"errors"

	"github.com/kbukum/shownotes/httpclient"
)

// IsDecode reports a response body that was not valid JSON for the target type.
func IsDecode(err error) bool { return errors.Is(err, httpclient.ErrDecode) }
