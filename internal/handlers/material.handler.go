package handlers

import (
	"errors"

	"filadex/internal/app"
	inventoryController "filadex/internal/controllers/inventory"
	"filadex/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MaterialHandler struct {
	Handler
	inventoryController inventoryController.InventoryControllerInterface
}

func NewMaterialHandler(app app.App, router fiber.Router) *MaterialHandler {
	log := logger.New("handlers").File("material_handler")
	return &MaterialHandler{
		inventoryController: app.Controllers.Inventory,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *MaterialHandler) Register() {
	materials := h.router.Group("/materials")
	materials.Get("", h.getMaterials)
	materials.Get("/available", h.getAvailableMaterials)
	materials.Get("/:id", h.getMaterial)
	materials.Post("", h.addMaterial)
	materials.Patch("/:id", h.updateMaterial)
	materials.Delete("/:id", h.deleteMaterial)
	materials.Post("/:id/deplete", h.markAsDepleted)
}

func inventoryErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, inventoryController.ErrValidation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if errors.Is(err, inventoryController.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}

func (h *MaterialHandler) getMaterials(c *fiber.Ctx) error {
	materials, err := h.inventoryController.GetMaterials(c.UserContext())
	if err != nil {
		return inventoryErrorResponse(c, err, "Failed to get materials")
	}

	return c.JSON(fiber.Map{
		"materials": materials,
	})
}

func (h *MaterialHandler) getAvailableMaterials(c *fiber.Ctx) error {
	materials, err := h.inventoryController.GetAvailableMaterials(c.UserContext())
	if err != nil {
		return inventoryErrorResponse(c, err, "Failed to get available materials")
	}

	return c.JSON(fiber.Map{
		"materials": materials,
	})
}

func (h *MaterialHandler) getMaterial(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid material ID",
		})
	}

	material, err := h.inventoryController.GetMaterial(c.UserContext(), id)
	if err != nil {
		return inventoryErrorResponse(c, err, "Failed to get material")
	}

	return c.JSON(fiber.Map{
		"material": material,
	})
}

func (h *MaterialHandler) addMaterial(c *fiber.Ctx) error {
	var req inventoryController.AddMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	material, err := h.inventoryController.AddMaterial(c.UserContext(), &req)
	if err != nil {
		return inventoryErrorResponse(c, err, "Failed to add material")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"material": material,
	})
}

func (h *MaterialHandler) updateMaterial(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid material ID",
		})
	}

	var req inventoryController.UpdateMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	material, err := h.inventoryController.UpdateMaterial(c.UserContext(), id, &req)
	if err != nil {
		return inventoryErrorResponse(c, err, "Failed to update material")
	}

	return c.JSON(fiber.Map{
		"material": material,
	})
}

func (h *MaterialHandler) deleteMaterial(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid material ID",
		})
	}

	if err := h.inventoryController.DeleteMaterial(c.UserContext(), id); err != nil {
		return inventoryErrorResponse(c, err, "Failed to delete material")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *MaterialHandler) markAsDepleted(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid material ID",
		})
	}

	material, err := h.inventoryController.MarkAsDepleted(c.UserContext(), id)
	if err != nil {
		return inventoryErrorResponse(c, err, "Failed to mark material as depleted")
	}

	return c.JSON(fiber.Map{
		"material": material,
	})
}
