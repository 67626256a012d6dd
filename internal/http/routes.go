package httpapp

import (
	"errors"
	"net/http"

	"github.com/cesargomez89/walkmlb/internal/domain"
	"github.com/cesargomez89/walkmlb/internal/http/dto"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) UpdaterStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Admin.Status())
}

func (h *Handler) RunOnce(w http.ResponseWriter, r *http.Request) {
	req, errs := dto.ParseRunOnce(r.URL.Query(), h.Admin.Today())
	if len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	h.Admin.StartRunOnce(req.Date, req.Force)
	h.Logger.Info("Run-once accepted", "date", domain.FormatDate(req.Date), "force", req.Force)
	h.writeJSON(w, http.StatusAccepted, dto.NewRunOnceAccepted(req))
}

func (h *Handler) Backfill(w http.ResponseWriter, r *http.Request) {
	req, errs := dto.ParseBackfill(r.URL.Query())
	if len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	if err := h.Admin.StartBackfill(req.Start, req.End, req.Force); err != nil {
		if errors.Is(err, domain.ErrInvalidConfig) {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, dto.NewBackfillAccepted(req))
}

func (h *Handler) CacheSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Admin.CacheSummary(r.Context())
	if err != nil {
		h.Logger.Error("Failed to summarize cache", "error", err)
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewCacheSummaryResponse(sum))
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	kind, errs := dto.ParseClearKind(r.URL.Query())
	if len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	n, err := h.Admin.ClearCache(r.Context(), kind)
	if err != nil {
		h.Logger.Error("Failed to clear cache", "kind", kind, "error", err)
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.ClearCacheResponse{Kind: kind, Removed: n})
}

func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	limit, errs := dto.ParseDiagnosticsLimit(r.URL.Query())
	if len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewDiagnosticsResponse(h.Admin.Diagnostics(limit)))
}
