package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"balloon-stock-api/internal/model"
	"balloon-stock-api/internal/store"
	"balloon-stock-api/pkg/apierror"
	"balloon-stock-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parseDate parses a YYYY-MM-DD date string.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return model.Day(t), nil
}

// serviceError maps store errors to API errors before writing the response.
func serviceError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, apierror.NotFound(""))
		return
	}
	response.Error(w, err)
}

// filterFromQuery builds an OperationFilter from history query parameters.
// Invalid dates are rejected by the caller via the returned error.
func filterFromQuery(r *http.Request) (model.OperationFilter, error) {
	var f model.OperationFilter
	q := r.URL.Query()

	if s := q.Get("date_from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return f, err
		}
		f.DateFrom = &t
	}
	if s := q.Get("date_to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return f, err
		}
		f.DateTo = &t
	}
	f.Customer = q.Get("customer")
	f.Code = q.Get("code")
	f.Size = q.Get("size")
	f.Color = q.Get("color")
	f.Manufacturer = q.Get("manufacturer")
	return f, nil
}
