package handlers

import (
	"errors"
	"net/http"

	"github.com/marcelovidal/padel-v1-sub001/middleware"
	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/services"
)

type ClubHandler struct {
	clubService  services.ClubService
	claimService services.ClubClaimService
}

func NewClubHandler(clubService services.ClubService, claimService services.ClubClaimService) *ClubHandler {
	return &ClubHandler{
		clubService:  clubService,
		claimService: claimService,
	}
}

func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.ClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.CreateClub(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	clubID, err := readIDParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.GetClub(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.ListClubs(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"clubs": clubs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	clubID, err := readIDParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	club, err := h.clubService.UploadLogo(r.Context(), clubID, currentUserID, role == models.RoleAdmin, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RequestClaim подаёт заявку на владение клубом от имени текущего пользователя.
func (h *ClubHandler) RequestClaim(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	clubID, err := readIDParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ContactInfo string `json:"contact_info"`
		Message     string `json:"message"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.ContactInfo == "" {
		badRequestResponse(w, r, errors.New("contact_info is required"))
		return
	}

	request, err := h.claimService.RequestClaim(r.Context(), clubID, currentUserID, input.ContactInfo, input.Message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"claim_request": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
