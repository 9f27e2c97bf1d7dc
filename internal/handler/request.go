package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
)

const (
	maxBodyBytes      = 1 << 20
	maxMultipartBytes = 1 << 20
)

// readParams flattens query, form and JSON body parameters into one map.
// Body values override query values of the same name.
func readParams(r *http.Request) (map[string]string, error) {
	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := readJSONParams(r, params); err != nil {
			return nil, err
		}
	case "application/x-www-form-urlencoded", "multipart/form-data":
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxMultipartBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return nil, &domain.InvalidInputError{Message: "invalid form body"}
		}
		for k, v := range r.PostForm {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
	}
	return params, nil
}

func readJSONParams(r *http.Request, params map[string]string) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &domain.InvalidInputError{Message: "failed to read request body"}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return &domain.InvalidInputError{Message: "invalid JSON body"}
	}

	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			params[k] = val
		case float64:
			params[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			params[k] = strconv.FormatBool(val)
		default:
			encoded, _ := json.Marshal(val)
			params[k] = string(encoded)
		}
	}
	return nil
}
