package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/internal/geo"
	"github.com/popalexr/Travel-Recommendation/internal/logging"
)

type geoHandler struct {
	geocoder *geo.Geocoder
}

type geocodeRequest struct {
	Locations []string `json:"locations"`
}

func (h *geoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req geocodeRequest
	if !decodeChatBody(w, r, &req) {
		return
	}

	results, err := h.geocoder.Geocode(r.Context(), req.Locations)
	switch {
	case errors.Is(err, geo.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	case errors.Is(err, geo.ErrNoLocations):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logging.FromContext(r.Context()).Error("geocode failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]geo.Result{"results": results})
}
