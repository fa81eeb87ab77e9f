package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
)

const maxQueryLength = 120

// SearchQuery extracts and bounds a free-text search parameter.
func SearchQuery(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if len(raw) > maxQueryLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter too long").
			WithDetails(map[string]any{"field": key, "max": maxQueryLength})
	}
	return raw, nil
}
