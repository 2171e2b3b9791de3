package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	errs "margo/internal/errors"
)

// MaxRequestBody bounds request bodies; a full size-26 position is well
// below it.
const MaxRequestBody = 1 << 20

// DecodeJSONRequest strictly decodes the body into dst. Failures wrap
// ErrBadRequest.
func DecodeJSONRequest(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBody+1))
	if err != nil {
		return fmt.Errorf("%w: failed to read request body: %w", errs.ErrBadRequest, err)
	}
	if len(body) > MaxRequestBody {
		return fmt.Errorf("%w: request body too large", errs.ErrBadRequest)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON: %w", errs.ErrBadRequest, err)
	}
	return nil
}
