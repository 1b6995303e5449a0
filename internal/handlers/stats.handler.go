package handlers

import (
	"filadex/internal/app"
	inventoryController "filadex/internal/controllers/inventory"
	ledgerController "filadex/internal/controllers/ledger"
	"filadex/internal/logger"
	"filadex/internal/services"

	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	Handler
	inventoryController inventoryController.InventoryControllerInterface
	ledgerController    ledgerController.LedgerControllerInterface
	printerStatus       *services.PrinterStatusService
}

func NewStatsHandler(app app.App, router fiber.Router) *StatsHandler {
	log := logger.New("handlers").File("stats_handler")
	return &StatsHandler{
		inventoryController: app.Controllers.Inventory,
		ledgerController:    app.Controllers.Ledger,
		printerStatus:       app.Services.PrinterStatus,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *StatsHandler) Register() {
	h.router.Get("/stats", h.getStats)
}

// getStats aggregates store-wide figures. The printer section is a one-way
// display signal; nothing here feeds back into inventory or the ledger.
func (h *StatsHandler) getStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	materials, err := h.inventoryController.GetMaterials(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get stats",
		})
	}

	available := 0
	for _, material := range materials {
		if material.IsAvailable() {
			available++
		}
	}

	records, err := h.ledgerController.GetPrintRecords(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get stats",
		})
	}

	totalWeight, err := h.ledgerController.TotalConsumedWeight(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get stats",
		})
	}

	totalCost, err := h.ledgerController.TotalConsumedCost(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get stats",
		})
	}

	stats := fiber.Map{
		"materials":          len(materials),
		"availableMaterials": available,
		"printRecords":       len(records),
		"totalConsumedGrams": totalWeight,
		"totalConsumedCost":  totalCost,
	}

	if h.printerStatus != nil && h.printerStatus.Enabled() {
		stats["printer"] = fiber.Map{
			"observedPrintCount": h.printerStatus.ObservedPrintCount(),
			"lastPolledAt":       h.printerStatus.LastPolledAt(),
			"devices":            h.printerStatus.DeviceStatus(),
		}
	}

	return c.JSON(fiber.Map{
		"stats": stats,
	})
}
