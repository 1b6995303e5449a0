package handlers

import (
	"errors"

	"filadex/internal/app"
	ledgerController "filadex/internal/controllers/ledger"
	"filadex/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RecordHandler struct {
	Handler
	ledgerController ledgerController.LedgerControllerInterface
}

func NewRecordHandler(app app.App, router fiber.Router) *RecordHandler {
	log := logger.New("handlers").File("record_handler")
	return &RecordHandler{
		ledgerController: app.Controllers.Ledger,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RecordHandler) Register() {
	records := h.router.Group("/records")
	records.Get("", h.getPrintRecords)
	records.Post("", h.addPrintRecord)
	records.Post("/single", h.createSingleMaterialRecord)
	records.Post("/multi", h.createMultiMaterialRecord)
	records.Delete("/:id", h.deletePrintRecord)
	records.Get("/:id/cost", h.getCostForRecord)
}

func ledgerErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, ledgerController.ErrValidation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if errors.Is(err, ledgerController.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}

func (h *RecordHandler) getPrintRecords(c *fiber.Ctx) error {
	records, err := h.ledgerController.GetPrintRecords(c.UserContext())
	if err != nil {
		return ledgerErrorResponse(c, err, "Failed to get print records")
	}

	return c.JSON(fiber.Map{
		"records": records,
	})
}

func (h *RecordHandler) addPrintRecord(c *fiber.Ctx) error {
	var req ledgerController.AddPrintRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record, err := h.ledgerController.AddPrintRecord(c.UserContext(), &req)
	if err != nil {
		return ledgerErrorResponse(c, err, "Failed to add print record")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"record": record,
	})
}

func (h *RecordHandler) createSingleMaterialRecord(c *fiber.Ctx) error {
	var req ledgerController.CreateSingleMaterialRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record, err := h.ledgerController.CreateSingleMaterialRecord(c.UserContext(), &req)
	if err != nil {
		return ledgerErrorResponse(c, err, "Failed to create print record")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"record": record,
	})
}

func (h *RecordHandler) createMultiMaterialRecord(c *fiber.Ctx) error {
	var req ledgerController.CreateMultiMaterialRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record, err := h.ledgerController.CreateMultiMaterialRecord(c.UserContext(), &req)
	if err != nil {
		return ledgerErrorResponse(c, err, "Failed to create print record")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"record": record,
	})
}

func (h *RecordHandler) deletePrintRecord(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid record ID",
		})
	}

	if err := h.ledgerController.DeletePrintRecord(c.UserContext(), id); err != nil {
		return ledgerErrorResponse(c, err, "Failed to delete print record")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *RecordHandler) getCostForRecord(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid record ID",
		})
	}

	cost, err := h.ledgerController.GetCostForRecord(c.UserContext(), id)
	if err != nil {
		return ledgerErrorResponse(c, err, "Failed to compute record cost")
	}

	return c.JSON(fiber.Map{
		"cost": cost,
	})
}
