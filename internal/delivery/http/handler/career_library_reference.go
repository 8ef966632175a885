package handler

import (
	"errors"
	"strings"

	"i4e-backend/internal/delivery/http/middleware"
	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

func (h *CareerLibraryHandler) CreateCareerCategory(c fiber.Ctx) error {
	return createReference(c, func(userID int64) (int64, error) {
		var in career.CareerCategory
		if err := c.Bind().Body(&in); err != nil {
			return 0, badRequest("Invalid request payload", err)
		}
		return h.refs.CreateCareerCategory(c.Context(), in, userID)
	})
}

func (h *CareerLibraryHandler) CreateSkillCategory(c fiber.Ctx) error {
	return createReference(c, func(userID int64) (int64, error) {
		var in career.SkillCategory
		if err := c.Bind().Body(&in); err != nil {
			return 0, badRequest("Invalid request payload", err)
		}
		return h.refs.CreateSkillCategory(c.Context(), in, userID)
	})
}

func (h *CareerLibraryHandler) CreateSkill(c fiber.Ctx) error {
	return createReference(c, func(userID int64) (int64, error) {
		var in career.Skill
		if err := c.Bind().Body(&in); err != nil {
			return 0, badRequest("Invalid request payload", err)
		}
		return h.refs.CreateSkill(c.Context(), in, userID)
	})
}

func (h *CareerLibraryHandler) CreateExam(c fiber.Ctx) error {
	return createReference(c, func(userID int64) (int64, error) {
		var in career.Exam
		if err := c.Bind().Body(&in); err != nil {
			return 0, badRequest("Invalid request payload", err)
		}
		return h.refs.CreateExam(c.Context(), in, userID)
	})
}

func (h *CareerLibraryHandler) CreateInstitute(c fiber.Ctx) error {
	return createReference(c, func(userID int64) (int64, error) {
		var in career.Institute
		if err := c.Bind().Body(&in); err != nil {
			return 0, badRequest("Invalid request payload", err)
		}
		return h.refs.CreateInstitute(c.Context(), in, userID)
	})
}

// CreateCompany takes a multipart form (name, description, companyLogo) or
// a JSON body without a logo.
func (h *CareerLibraryHandler) CreateCompany(c fiber.Ctx) error {
	return createReference(c, func(userID int64) (int64, error) {
		var in career.Company
		if !isMultipart(c) {
			if err := c.Bind().Body(&in); err != nil {
				return 0, badRequest("Invalid request payload", err)
			}
			return h.refs.CreateCompany(c.Context(), in, nil, userID)
		}

		in.Name = c.FormValue("name")
		in.Description = c.FormValue("description")
		logo, err := formFile(c, "companyLogo")
		if err != nil {
			return 0, err
		}
		return h.refs.CreateCompany(c.Context(), in, logo, userID)
	})
}

// CreatePersonality takes a multipart form (name, lastName, personImage) or
// a JSON body without an image.
func (h *CareerLibraryHandler) CreatePersonality(c fiber.Ctx) error {
	return createReference(c, func(userID int64) (int64, error) {
		var in career.Personality
		if !isMultipart(c) {
			if err := c.Bind().Body(&in); err != nil {
				return 0, badRequest("Invalid request payload", err)
			}
			return h.refs.CreatePersonality(c.Context(), in, nil, userID)
		}

		in.Name = c.FormValue("name")
		in.LastName = c.FormValue("lastName")
		image, err := formFile(c, "personImage")
		if err != nil {
			return 0, err
		}
		return h.refs.CreatePersonality(c.Context(), in, image, userID)
	})
}

// FindReference looks up an active reference row by kind and exact name.
func (h *CareerLibraryHandler) FindReference(c fiber.Ctx) error {
	kind := career.EntityKind(strings.TrimSpace(c.Query("kind")))
	ref, err := h.refs.FindByName(c.Context(), kind, c.Query("name"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, ref)
}

func createReference(c fiber.Ctx, create func(userID int64) (int64, error)) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := create(userID)
	if err != nil {
		var appErr *middleware.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, fiber.Map{"id": id})
}
