package handlers

import (
	"errors"

	"filadex/internal/app"
	presetController "filadex/internal/controllers/preset"
	"filadex/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PresetHandler struct {
	Handler
	presetController presetController.PresetControllerInterface
}

func NewPresetHandler(app app.App, router fiber.Router) *PresetHandler {
	log := logger.New("handlers").File("preset_handler")
	return &PresetHandler{
		presetController: app.Controllers.Preset,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *PresetHandler) Register() {
	presets := h.router.Group("/presets")
	presets.Get("", h.getPresets)
	presets.Post("", h.addPreset)
	presets.Delete("/:id", h.deletePreset)
}

func presetErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, presetController.ErrValidation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if errors.Is(err, presetController.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}

func (h *PresetHandler) getPresets(c *fiber.Ctx) error {
	filter := presetController.PresetFilter{
		Brand:        c.Query("brand"),
		MainCategory: c.Query("mainCategory"),
		SubCategory:  c.Query("subCategory"),
		Term:         c.Query("q"),
	}

	presets, err := h.presetController.GetPresets(c.UserContext(), filter)
	if err != nil {
		return presetErrorResponse(c, err, "Failed to get presets")
	}

	return c.JSON(fiber.Map{
		"presets": presets,
	})
}

func (h *PresetHandler) addPreset(c *fiber.Ctx) error {
	var req presetController.AddPresetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	preset, err := h.presetController.AddPreset(c.UserContext(), &req)
	if err != nil {
		return presetErrorResponse(c, err, "Failed to add preset")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"preset": preset,
	})
}

func (h *PresetHandler) deletePreset(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid preset ID",
		})
	}

	if err := h.presetController.DeletePreset(c.UserContext(), id); err != nil {
		return presetErrorResponse(c, err, "Failed to delete preset")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
