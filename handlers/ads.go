package handlers

import (
	"net/http"

	"adpay-go/models"
)

// LoadAd is served for both GET and POST; neither reads a body.
func (h *Handlers) LoadAd(w http.ResponseWriter, r *http.Request) {
	offer, err := h.svc.Ads.LoadAd(r.Context(), currentUserID(r))
	if err != nil {
		h.handleError(w, r, err, "Failed to load ad")
		return
	}
	respond(w, http.StatusOK, "", map[string]interface{}{"ad": offer})
}

func (h *Handlers) CompleteAd(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteAdRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Ads.CompleteAd(r.Context(), currentUserID(r), req.AdID)
	if err != nil {
		h.handleError(w, r, err, "Failed to complete ad")
		return
	}
	respond(w, http.StatusOK, "Ad completed, earnings credited", res)
}
