package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/scrape-service/internal/model"
	"github.com/sells-group/scrape-service/internal/scrape"
)

type scrapeHandler struct {
	runner Runner
}

func (h *scrapeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := zap.L().With(zap.String("scrape_id", uuid.NewString()))

	var req model.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	result, err := h.runner.Run(r.Context(), req.URL)
	if err != nil {
		status, detail := http.StatusInternalServerError, "Scrape failed unexpectedly."
		var serr *scrape.Error
		if errors.As(err, &serr) {
			status, detail = serr.HTTPStatus(), serr.Message
		}
		log.Warn("scrape request failed",
			zap.String("url", req.URL),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeError(w, status, detail)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
