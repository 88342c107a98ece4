package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"wizardgo/internal/shared/errors"
)

const maxBodyBytes = 1 << 20 // 1 MB

// DecodeJSON reads a JSON request body into dst, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.WrapValidation("invalid JSON in request body", err)
	}
	return nil
}

// PathUUID parses the named path wildcard as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, errors.Validationf("%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.WrapValidation(fmt.Sprintf("invalid %s format", name), err)
	}
	return id, nil
}

// QueryFloat parses a required float query parameter.
func QueryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.Validationf("query parameter %s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.WrapValidation(fmt.Sprintf("invalid %s", name), err)
	}
	return v, nil
}

// QueryOptionalFloat parses an optional float query parameter. It returns nil
// when the parameter is absent so callers can tell it apart from zero.
func QueryOptionalFloat(r *http.Request, name string) (*float64, error) {
	if r.URL.Query().Get(name) == "" {
		return nil, nil
	}
	v, err := QueryFloat(r, name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// QueryInt parses an optional integer query parameter.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.WrapValidation(fmt.Sprintf("invalid %s", name), err)
	}
	return v, nil
}
