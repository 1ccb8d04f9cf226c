package server

import (
	"errors"
	"net/http"

	"github.com/windowsadmins/appstore/pkg/catalog"
	"github.com/windowsadmins/appstore/pkg/logging"
	"github.com/windowsadmins/appstore/pkg/web"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, catalog.ErrConflict):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	default:
		logging.Error("Catalog request failed", "error", err)
	}

	web.WriteJSON(w, status, errorBody{Error: msg})
}
