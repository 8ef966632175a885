package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"i4e-backend/internal/delivery/http/middleware"
	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/pipeline"
	"i4e-backend/internal/pkg/response"
	"i4e-backend/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type CareerLibraryHandler struct {
	careers usecase.CareerUsecase
	refs    usecase.ReferenceUsecase
	bulk    usecase.BulkUploadUsecase
	search  usecase.SearchUsecase
}

func NewCareerLibraryHandler(careers usecase.CareerUsecase, refs usecase.ReferenceUsecase, bulk usecase.BulkUploadUsecase, search usecase.SearchUsecase) *CareerLibraryHandler {
	return &CareerLibraryHandler{careers: careers, refs: refs, bulk: bulk, search: search}
}

func (h *CareerLibraryHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/metaData", h.GetMetadata)
	r.Get("/category", h.GetCategoryCareers)
	r.Get("/reference", h.FindReference)

	r.Post("/career", h.CreateCareer)
	r.Put("/career", h.UpdateCareer)
	r.Patch("/career", h.DeactivateCareer)
	r.Get("/career", h.GetCareer)
	r.Patch("/career/popular", h.MarkPopular)
	r.Patch("/career/category-description", h.UpdateCategoryDescription)
	r.Post("/career/youtube-link", h.UploadYoutubeLinks)
	r.Post("/career/education-path", h.AddEducationPath)
	r.Get("/career/search", h.Search)
	r.Get("/career/autocompletion", h.Autocomplete)

	r.Post("/category", h.CreateCareerCategory)
	r.Post("/skill/category", h.CreateSkillCategory)
	r.Post("/skill", h.CreateSkill)
	r.Post("/exam", h.CreateExam)
	r.Post("/company", h.CreateCompany)
	r.Post("/personality", h.CreatePersonality)
	r.Post("/institute", h.CreateInstitute)

	r.Post("/bulk-upload", h.BulkUpload)
	r.Get("/bulk-upload-template", h.GetTemplate)
	r.Post("/bulk-upload-template", h.UploadTemplate)
	r.Put("/bulk-upload-template", h.UploadTemplate)
}

type careerIDRequest struct {
	CareerID int64 `json:"careerId"`
}

func (h *CareerLibraryHandler) CreateCareer(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req career.Details
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Invalid request payload", err)
	}

	id, err := h.careers.CreateCareer(c.Context(), req, userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, fiber.Map{"careerId": id})
}

func (h *CareerLibraryHandler) UpdateCareer(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req career.Details
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Invalid request payload", err)
	}
	if req.CareerID <= 0 {
		return badRequest("careerId is required", nil)
	}

	if err := h.careers.UpdateCareer(c.Context(), req, userID); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"careerId": req.CareerID})
}

func (h *CareerLibraryHandler) DeactivateCareer(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req careerIDRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Invalid request payload", err)
	}

	if err := h.careers.DeactivateCareer(c.Context(), req.CareerID, userID); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"careerId": req.CareerID, "isActive": false})
}

func (h *CareerLibraryHandler) MarkPopular(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req careerIDRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Invalid request payload", err)
	}

	popular, err := h.careers.MarkCareerAsPopular(c.Context(), req.CareerID, userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"careerId": req.CareerID, "isPopular": popular})
}

// GetCareer returns one career by slug, or the career list when no slug is
// given.
func (h *CareerLibraryHandler) GetCareer(c fiber.Ctx) error {
	slug := strings.TrimSpace(c.Query("slug"))
	if slug == "" {
		onlyActive, err := queryBool(c, "onlyActive", true)
		if err != nil {
			return err
		}
		items, err := h.careers.ListCareers(c.Context(), onlyActive)
		if err != nil {
			return mapUsecaseError(err)
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, items)
	}

	view := strings.ToLower(c.Query("queryFrom", usecase.ViewClient))
	if view != usecase.ViewClient && view != usecase.ViewAdmin {
		return badRequest("Invalid queryFrom", nil)
	}
	details, err := h.careers.GetCareerDetails(c.Context(), slug, view)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, details)
}

func (h *CareerLibraryHandler) GetCategoryCareers(c fiber.Ctx) error {
	items, err := h.careers.GetCategoryCareers(c.Context(), c.Query("slug"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *CareerLibraryHandler) GetMetadata(c fiber.Ctx) error {
	md, err := h.careers.GetMetadata(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, md)
}

type youtubeLinkRequest struct {
	CareerID    int64                `json:"careerId"`
	YoutubeLink []career.YoutubeLink `json:"youtubeLink"`
}

// UploadYoutubeLinks accepts JSON, or a multipart form with careerId, a
// youtubeLink JSON array and thumbnails in fileList matched by position.
func (h *CareerLibraryHandler) UploadYoutubeLinks(c fiber.Ctx) error {
	var req youtubeLinkRequest
	thumbs := map[int]usecase.FileUpload{}

	if isMultipart(c) {
		id, err := parseInt64(c.FormValue("careerId"))
		if err != nil {
			return err
		}
		req.CareerID = id
		if err := json.Unmarshal([]byte(c.FormValue("youtubeLink")), &req.YoutubeLink); err != nil {
			return badRequest("Invalid youtubeLink", err)
		}
		form, err := c.MultipartForm()
		if err != nil {
			return badRequest("Invalid form", err)
		}
		for i, fh := range form.File["fileList"] {
			f, err := readFileHeader(fh)
			if err != nil {
				return err
			}
			thumbs[i] = *f
		}
	} else if err := c.Bind().Body(&req); err != nil {
		return badRequest("Invalid request payload", err)
	}

	links, err := h.careers.UploadYoutubeLinks(c.Context(), req.CareerID, req.YoutubeLink, thumbs)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, links)
}

type educationPathRequest struct {
	CareerID int64                  `json:"careerId"`
	Srno     int                    `json:"srno"`
	Details  []career.EducationStep `json:"details"`
}

func (h *CareerLibraryHandler) AddEducationPath(c fiber.Ctx) error {
	var req educationPathRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Invalid request payload", err)
	}
	if err := h.careers.AddEducationPath(c.Context(), req.CareerID, req.Details, req.Srno); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, fiber.Map{"careerId": req.CareerID, "srno": req.Srno})
}

type categoryDescriptionRequest struct {
	CategoryID int64  `json:"categoryId"`
	HTML       string `json:"html"`
}

func (h *CareerLibraryHandler) UpdateCategoryDescription(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req categoryDescriptionRequest
	var html []byte
	if isMultipart(c) {
		if req.CategoryID, err = parseInt64(c.FormValue("categoryId")); err != nil {
			return err
		}
		f, err := formFile(c, "description", "file")
		if err != nil {
			return err
		}
		if f == nil {
			return badRequest("description file is required", nil)
		}
		html = f.Data
	} else {
		if err := c.Bind().Body(&req); err != nil {
			return badRequest("Invalid request payload", err)
		}
		html = []byte(req.HTML)
	}

	url, err := h.refs.UpdateCategoryDescription(c.Context(), req.CategoryID, html, userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"categoryId": req.CategoryID, "descriptionUrl": url})
}

func (h *CareerLibraryHandler) Search(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	items, err := h.search.Search(c.Context(), c.Query("q"), limit)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *CareerLibraryHandler) Autocomplete(c fiber.Ctx) error {
	items, err := h.search.Autocomplete(c.Context(), c.Query("q"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *CareerLibraryHandler) BulkUpload(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	file, err := formFile(c, "csv", "file")
	if err != nil {
		return err
	}
	if file == nil || len(file.Data) == 0 {
		return badRequest("A spreadsheet is required in the csv field", nil)
	}

	res, err := h.bulk.Upload(c.Context(), userID, file.Data)
	if err != nil {
		var rowErr *pipeline.RowError
		if errors.As(err, &rowErr) {
			appErr := mapUsecaseError(err).(*middleware.AppError)
			appErr.Data = res
			return appErr
		}
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res.Rows)
}

func (h *CareerLibraryHandler) GetTemplate(c fiber.Ctx) error {
	t, err := h.bulk.GetTemplate(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, t)
}

func (h *CareerLibraryHandler) UploadTemplate(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	file, err := formFile(c, "templateFile", "file")
	if err != nil {
		return err
	}
	if file == nil {
		return badRequest("A template file is required in the templateFile field", nil)
	}

	t, err := h.bulk.UploadTemplate(c.Context(), *file, userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, t)
}
