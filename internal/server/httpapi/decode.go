package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/agritrack/internal/common"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	if limit <= 0 {
		limit = maxJSONBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			return common.Invalid("body", "too large")
		case errors.Is(err, io.EOF):
			return common.Invalid("body", "empty")
		default:
			return common.Invalid("body", "malformed json")
		}
	}
	return nil
}
