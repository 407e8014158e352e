package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"islamic-app-api/internal/model"
	"islamic-app-api/internal/service"
	"islamic-app-api/pkg/apierror"
	"islamic-app-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// SurahHandler handles surah-related HTTP requests.
type SurahHandler struct {
	surahService *service.SurahService
}

// NewSurahHandler creates a new surah handler.
func NewSurahHandler(surahService *service.SurahService) *SurahHandler {
	return &SurahHandler{
		surahService: surahService,
	}
}

// Create handles POST /api/surahs/create
func (h *SurahHandler) Create(w http.ResponseWriter, r *http.Request) {
	var surah model.Surah
	if err := json.NewDecoder(r.Body).Decode(&surah); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}
	defer r.Body.Close()

	created, err := h.surahService.Create(r.Context(), &surah)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, created, "Surah created successfully")
}

// GetAll handles GET /api/surahs/get-all
func (h *SurahHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	surahs, err := h.surahService.GetAll(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, surahs, "Surahs retrieved successfully")
}

// GetByID handles GET /api/surahs/getbyId/{id}
func (h *SurahHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	surah, err := h.surahService.GetByID(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, surah, "Surah retrieved successfully")
}

// GetByNumber handles GET /api/surahs/number/{number}
func (h *SurahHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid surah number"))
		return
	}

	surah, err := h.surahService.GetByNumber(r.Context(), number)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, surah, "Surah retrieved successfully")
}

// SearchResponse is the search endpoint's envelope, which differs from
// the standard one: matches ride in "surahs" rather than "data".
type SearchResponse struct {
	Success bool          `json:"success"`
	Surahs  []model.Surah `json:"surahs"`
}

// Search handles GET /api/surahs/search?q=...
func (h *SurahHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	surahs, err := h.surahService.Search(r.Context(), query)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Raw(w, http.StatusOK, SearchResponse{
		Success: true,
		Surahs:  surahs,
	})
}

// Update handles PUT /api/surahs/{id}
func (h *SurahHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	var update model.SurahUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}
	defer r.Body.Close()

	updated, err := h.surahService.Update(r.Context(), id, &update)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, updated, "Surah updated successfully")
}

// Delete handles DELETE /api/surahs/{id}
func (h *SurahHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	if err := h.surahService.Delete(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, nil, "Surah deleted successfully")
}
