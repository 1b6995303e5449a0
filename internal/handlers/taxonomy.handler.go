package handlers

import (
	"errors"

	"filadex/internal/app"
	taxonomyController "filadex/internal/controllers/taxonomy"
	"filadex/internal/logger"
	"filadex/internal/models"

	"github.com/gofiber/fiber/v2"
)

type TaxonomyHandler struct {
	Handler
	taxonomyController taxonomyController.TaxonomyControllerInterface
}

func NewTaxonomyHandler(app app.App, router fiber.Router) *TaxonomyHandler {
	log := logger.New("handlers").File("taxonomy_handler")
	return &TaxonomyHandler{
		taxonomyController: app.Controllers.Taxonomy,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *TaxonomyHandler) Register() {
	taxonomy := h.router.Group("/taxonomy")
	taxonomy.Get("/:kind", h.getLabels)
	taxonomy.Post("/:kind", h.addCustomLabel)
}

func taxonomyErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, taxonomyController.ErrValidation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if errors.Is(err, taxonomyController.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}

func (h *TaxonomyHandler) getLabels(c *fiber.Ctx) error {
	kind := models.TaxonomyKind(c.Params("kind"))

	labels, err := h.taxonomyController.GetLabels(c.UserContext(), kind)
	if err != nil {
		return taxonomyErrorResponse(c, err, "Failed to get labels")
	}

	return c.JSON(fiber.Map{
		"labels": labels,
	})
}

func (h *TaxonomyHandler) addCustomLabel(c *fiber.Ctx) error {
	kind := models.TaxonomyKind(c.Params("kind"))

	var req taxonomyController.AddCustomLabelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	label, err := h.taxonomyController.AddCustomLabel(c.UserContext(), kind, &req)
	if err != nil {
		return taxonomyErrorResponse(c, err, "Failed to add label")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"label": label,
	})
}
