package handlers

import (
	"net/http"

	"github.com/marcelovidal/padel-v1-sub001/middleware"
	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/services"
)

type AdminHandler struct {
	adminService services.AdminService
	claimService services.ClubClaimService
}

func NewAdminHandler(adminService services.AdminService, claimService services.ClubClaimService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		claimService: claimService,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := models.UserFilter{
		Page:  toInt(query.Get("page"), 1),
		Limit: toInt(query.Get("limit"), 20),
	}
	if roleStr := query.Get("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		filter.Role = &role
	}

	res, err := h.adminService.ListUsers(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, res, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) ListPendingClaims(w http.ResponseWriter, r *http.Request) {
	requests, err := h.claimService.ListPendingRequests(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"claim_requests": requests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResolveClaim утверждает или отклоняет заявку на владение клубом.
func (h *AdminHandler) ResolveClaim(w http.ResponseWriter, r *http.Request) {
	resolverUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	requestID, err := readIDParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Decision string `json:"decision"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	decision := services.ClaimDecision(input.Decision)
	if err := h.claimService.ResolveClaim(r.Context(), requestID, resolverUserID, decision); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": string(decision)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
