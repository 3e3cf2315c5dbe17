package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"ceoacademy/internal/common"
)

type Logger interface {
	Error(msg string)
}

var logger Logger

// SetLogger installs the operator log used for internal failures. User-facing
// bodies never carry the underlying detail.
func SetLogger(l Logger) {
	logger = l
}

type fieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Error   string        `json:"error"`
	Details []fieldDetail `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Error: "request failed"}

	var appErr *common.Error
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case common.CodeValidation:
			status = http.StatusBadRequest
		case common.CodeConflict:
			status = http.StatusConflict
		case common.CodeNotFound:
			status = http.StatusNotFound
		case common.CodeUnauthorized:
			status = http.StatusUnauthorized
		case common.CodeForbidden:
			status = http.StatusForbidden
		case common.CodeRateLimited:
			status = http.StatusTooManyRequests
		}
		if appErr.Code != common.CodeInternal {
			body.Error = appErr.Message
			body.Details = detailsOf(appErr.Fields)
		}
	}
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("internal error: " + err.Error())
	}
	JSON(w, status, body)
}

func detailsOf(fields map[string]string) []fieldDetail {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	details := make([]fieldDetail, 0, len(names))
	for _, name := range names {
		details = append(details, fieldDetail{Field: name, Message: fields[name]})
	}
	return details
}
