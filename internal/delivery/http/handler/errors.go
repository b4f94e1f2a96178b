package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

// writeError maps service errors onto HTTP statuses. Internal causes are
// logged and never shown to the client.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInternal):
		log.Error("Internal error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		response.Error(w, http.StatusUnauthorized, err.Error())
	default:
		log.Error("Unclassified error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
