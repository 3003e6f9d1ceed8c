package http

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/validators"
	"github.com/MKhiriev/go-field-keeper/models"
	"github.com/go-chi/chi/v5"
)

const (
	paramProjectID = "projectID"
	paramActorID   = "actorID"

	totalCountHeader = "X-Total-Count"
)

func hasPathParam(r *http.Request, name string) bool {
	rctx := chi.RouteContext(r.Context())
	return rctx != nil && slices.Contains(rctx.URLParams.Keys, name)
}

// pathID parses a positive integer route parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidPathParameter, name, raw)
	}
	return id, nil
}

func queryInt64(q url.Values, name string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidQueryParameter, name)
	}
	return &v, nil
}

func queryString(q url.Values, name string) *string {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}

func queryBool(q url.Values, name string) (*bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", ErrInvalidQueryParameter, name)
	}
	return &v, nil
}

// queryTime accepts the same UTC-only RFC 3339 form devices must send.
func queryTime(q url.Values, name string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := validators.ParseUTCDateTime(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidQueryParameter, name, err)
	}
	return &t, nil
}

func pageFromQuery(q url.Values) (models.Page, error) {
	var page models.Page
	limit, err := queryInt64(q, "limit")
	if err != nil {
		return page, err
	}
	offset, err := queryInt64(q, "offset")
	if err != nil {
		return page, err
	}
	if limit != nil {
		page.Limit = int(*limit)
	}
	if offset != nil {
		page.Offset = int(*offset)
	}
	return page.Normalize(), nil
}

func setTotalCount(w http.ResponseWriter, total int64) {
	w.Header().Set(totalCountHeader, strconv.FormatInt(total, 10))
}
