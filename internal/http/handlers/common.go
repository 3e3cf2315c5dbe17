package handlers

import (
	"encoding/json"
	"net/http"

	"ceoacademy/internal/common"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return common.NewError(common.CodeValidation, "request body is required", nil)
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return common.NewError(common.CodeValidation, "invalid json body", err)
	}
	return nil
}
