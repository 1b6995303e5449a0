package ledgerController

import (
	"context"
	"errors"
	"time"

	"filadex/config"
	"filadex/internal/database"
	"filadex/internal/events"
	"filadex/internal/logger"
	. "filadex/internal/models"
	"filadex/internal/repositories"
	"filadex/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

type LedgerController struct {
	recordRepo         repositories.PrintRecordRepository
	materialRepo       repositories.MaterialRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

type CreateSingleMaterialRecordRequest struct {
	ModelName      string    `json:"modelName"      validate:"required"`
	Link           *string   `json:"link,omitempty"`
	PrintedAt      *string   `json:"printedAt,omitempty"`
	MaterialID     uuid.UUID `json:"materialId"     validate:"required"`
	RequestedGrams float64   `json:"requestedGrams" validate:"required"`
}

type UsageRequest struct {
	MaterialID     uuid.UUID `json:"materialId"     validate:"required"`
	RequestedGrams float64   `json:"requestedGrams" validate:"required"`
}

type CreateMultiMaterialRecordRequest struct {
	ModelName string         `json:"modelName"           validate:"required"`
	Link      *string        `json:"link,omitempty"`
	PrintedAt *string        `json:"printedAt,omitempty"`
	Usages    []UsageRequest `json:"usages"              validate:"required"`
}

// AddPrintRecordRequest appends a prebuilt record, e.g. an import from
// another tracker. It never touches inventory weights.
type AddPrintRecordRequest struct {
	ModelName       string     `json:"modelName" validate:"required"`
	Link            *string    `json:"link,omitempty"`
	PrintedAt       *string    `json:"printedAt,omitempty"`
	MaterialID      *uuid.UUID `json:"materialId,omitempty"`
	MaterialName    *string    `json:"materialName,omitempty"`
	WeightUsedGrams *float64   `json:"weightUsedGrams,omitempty"`
}

// RecordCost carries the live cost of a single record. Currency is taken
// from the first costed material; spools in a store are assumed to share one
// currency, and amounts across mixed-currency usages are summed without
// conversion. A record with no surviving materials reports DefaultCurrency.
type RecordCost struct {
	RecordID uuid.UUID       `json:"recordId"`
	Currency string          `json:"currency"`
	Cost     decimal.Decimal `json:"cost"`
}

type LedgerControllerInterface interface {
	GetPrintRecords(ctx context.Context) ([]*PrintRecord, error)
	CreateSingleMaterialRecord(
		ctx context.Context,
		request *CreateSingleMaterialRecordRequest,
	) (*PrintRecord, error)
	CreateMultiMaterialRecord(
		ctx context.Context,
		request *CreateMultiMaterialRecordRequest,
	) (*PrintRecord, error)
	AddPrintRecord(ctx context.Context, request *AddPrintRecordRequest) (*PrintRecord, error)
	DeletePrintRecord(ctx context.Context, id uuid.UUID) error
	GetCostForRecord(ctx context.Context, id uuid.UUID) (*RecordCost, error)
	TotalConsumedWeight(ctx context.Context) (float64, error)
	TotalConsumedCost(ctx context.Context) (decimal.Decimal, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) LedgerControllerInterface {
	return &LedgerController{
		recordRepo:         repos.PrintRecord,
		materialRepo:       repos.Material,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("ledgerController"),
	}
}

func (c *LedgerController) GetPrintRecords(ctx context.Context) ([]*PrintRecord, error) {
	log := c.log.Function("GetPrintRecords")

	records, err := c.recordRepo.GetAll(ctx, c.db.SQL)
	if err != nil {
		return nil, log.Err("failed to get print records", err)
	}

	return records, nil
}

// CreateSingleMaterialRecord logs one print against one spool. The stored
// weight is what consume actually applied, which may be less than requested
// when the spool runs dry mid-request. A missing material fails the whole
// operation; nothing is written.
func (c *LedgerController) CreateSingleMaterialRecord(
	ctx context.Context,
	request *CreateSingleMaterialRecordRequest,
) (*PrintRecord, error) {
	log := c.log.Function("CreateSingleMaterialRecord")

	if request.ModelName == "" {
		return nil, log.ErrorWithType(ErrValidation, "modelName is required")
	}
	if request.MaterialID == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "materialId is required")
	}
	if request.RequestedGrams < 0 {
		return nil, log.ErrorWithType(ErrValidation, "requestedGrams cannot be negative")
	}

	printedAt, err := c.parsePrintedAt(request.PrintedAt)
	if err != nil {
		return nil, err
	}

	var record *PrintRecord
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		material, err := c.materialRepo.GetByID(ctx, tx, request.MaterialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return log.ErrorWithType(
					ErrNotFound,
					"material not found",
					"materialID", request.MaterialID,
				)
			}
			return err
		}

		actual, clamped, err := c.materialRepo.Consume(ctx, tx, material.ID, request.RequestedGrams)
		if err != nil {
			return err
		}
		if clamped {
			log.Warn(
				"single-material record clamped",
				"materialID", material.ID,
				"requested", request.RequestedGrams,
				"actual", actual,
			)
		}

		name := material.Name
		record = &PrintRecord{
			ModelName:       request.ModelName,
			Link:            request.Link,
			PrintedAt:       printedAt,
			MaterialID:      &material.ID,
			MaterialName:    &name,
			WeightUsedGrams: &actual,
		}

		return c.recordRepo.Create(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	c.publish(events.RECORD_CREATED, record.ID)

	log.Info("Single-material record created", "recordID", record.ID)
	return record, nil
}

// CreateMultiMaterialRecord logs one print against several spools. Each usage
// is consumed independently: a missing material skips that entry instead of
// failing the record, so the stored usage list can be shorter than the
// request.
func (c *LedgerController) CreateMultiMaterialRecord(
	ctx context.Context,
	request *CreateMultiMaterialRecordRequest,
) (*PrintRecord, error) {
	log := c.log.Function("CreateMultiMaterialRecord")

	if request.ModelName == "" {
		return nil, log.ErrorWithType(ErrValidation, "modelName is required")
	}
	for _, usage := range request.Usages {
		if usage.RequestedGrams < 0 {
			return nil, log.ErrorWithType(ErrValidation, "requestedGrams cannot be negative")
		}
	}

	printedAt, err := c.parsePrintedAt(request.PrintedAt)
	if err != nil {
		return nil, err
	}

	var record *PrintRecord
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var usages []MaterialUsage

		for _, usageRequest := range request.Usages {
			material, err := c.materialRepo.GetByID(ctx, tx, usageRequest.MaterialID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					log.Warn(
						"skipping usage for missing material",
						"materialID", usageRequest.MaterialID,
					)
					continue
				}
				return err
			}

			actual, clamped, err := c.materialRepo.Consume(
				ctx,
				tx,
				material.ID,
				usageRequest.RequestedGrams,
			)
			if err != nil {
				return err
			}
			if clamped {
				log.Warn(
					"usage clamped to remaining weight",
					"materialID", material.ID,
					"requested", usageRequest.RequestedGrams,
					"actual", actual,
				)
			}

			usages = append(usages, MaterialUsage{
				MaterialID:      material.ID,
				MaterialName:    material.Name,
				WeightUsedGrams: actual,
			})
		}

		record = &PrintRecord{
			ModelName: request.ModelName,
			Link:      request.Link,
			PrintedAt: printedAt,
			Usages:    usages,
		}

		return c.recordRepo.Create(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	c.publish(events.RECORD_CREATED, record.ID)

	log.Info(
		"Multi-material record created",
		"recordID", record.ID,
		"requestedUsages", len(request.Usages),
		"storedUsages", len(record.Usages),
	)
	return record, nil
}

// AddPrintRecord appends a record without consuming anything.
func (c *LedgerController) AddPrintRecord(
	ctx context.Context,
	request *AddPrintRecordRequest,
) (*PrintRecord, error) {
	log := c.log.Function("AddPrintRecord")

	if request.ModelName == "" {
		return nil, log.ErrorWithType(ErrValidation, "modelName is required")
	}
	if request.WeightUsedGrams != nil && *request.WeightUsedGrams < 0 {
		return nil, log.ErrorWithType(ErrValidation, "weightUsedGrams cannot be negative")
	}

	printedAt, err := c.parsePrintedAt(request.PrintedAt)
	if err != nil {
		return nil, err
	}

	record := &PrintRecord{
		ModelName:       request.ModelName,
		Link:            request.Link,
		PrintedAt:       printedAt,
		MaterialID:      request.MaterialID,
		MaterialName:    request.MaterialName,
		WeightUsedGrams: request.WeightUsedGrams,
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.recordRepo.Create(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	c.publish(events.RECORD_CREATED, record.ID)

	log.Info("Print record added", "recordID", record.ID)
	return record, nil
}

// DeletePrintRecord removes the ledger entry only. Consumed weight stays
// consumed; deleting a mis-entered record does not refill the spool.
func (c *LedgerController) DeletePrintRecord(ctx context.Context, id uuid.UUID) error {
	log := c.log.Function("DeletePrintRecord")

	if id == uuid.Nil {
		return log.ErrorWithType(ErrValidation, "record id is required")
	}

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.recordRepo.Delete(ctx, tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return log.ErrorWithType(ErrNotFound, "print record not found", "recordID", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(events.RECORD_DELETED, id)

	log.Info("Print record deleted", "recordID", id)
	return nil
}

// GetCostForRecord recomputes the record's cost from the current material
// rows on every call. Editing a material's price retroactively changes what
// historical records report. Usages whose material has since been deleted
// contribute zero.
func (c *LedgerController) GetCostForRecord(ctx context.Context, id uuid.UUID) (*RecordCost, error) {
	log := c.log.Function("GetCostForRecord")

	record, err := c.recordRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "print record not found", "recordID", id)
		}
		return nil, log.Err("failed to get print record", err, "recordID", id)
	}

	cost, currency, err := c.costForRecord(ctx, c.db.SQL, record)
	if err != nil {
		return nil, err
	}

	return &RecordCost{
		RecordID: record.ID,
		Currency: currency,
		Cost:     cost,
	}, nil
}

func (c *LedgerController) costForRecord(
	ctx context.Context,
	tx *gorm.DB,
	record *PrintRecord,
) (decimal.Decimal, string, error) {
	total := decimal.Zero
	currency := ""

	for _, usage := range record.UsageEntries() {
		material, err := c.materialRepo.GetByID(ctx, tx, usage.MaterialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return decimal.Zero, DefaultCurrency, err
		}

		if currency == "" {
			currency = material.PriceCurrency
		}
		weight := decimal.NewFromFloat(usage.WeightUsedGrams)
		total = total.Add(material.UnitPrice().Mul(weight))
	}

	if currency == "" {
		currency = DefaultCurrency
	}

	return total.Round(2), currency, nil
}

// TotalConsumedWeight sums every usage weight across the ledger.
func (c *LedgerController) TotalConsumedWeight(ctx context.Context) (float64, error) {
	log := c.log.Function("TotalConsumedWeight")

	records, err := c.recordRepo.GetAll(ctx, c.db.SQL)
	if err != nil {
		return 0, log.Err("failed to get print records", err)
	}

	var total float64
	for _, record := range records {
		total += record.TotalWeightGrams()
	}

	return total, nil
}

// TotalConsumedCost sums the live cost of every record. Recomputed from
// scratch each call so it always agrees with GetCostForRecord.
func (c *LedgerController) TotalConsumedCost(ctx context.Context) (decimal.Decimal, error) {
	log := c.log.Function("TotalConsumedCost")

	records, err := c.recordRepo.GetAll(ctx, c.db.SQL)
	if err != nil {
		return decimal.Zero, log.Err("failed to get print records", err)
	}

	total := decimal.Zero
	for _, record := range records {
		cost, _, err := c.costForRecord(ctx, c.db.SQL, record)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(cost)
	}

	return total, nil
}

func (c *LedgerController) parsePrintedAt(raw *string) (time.Time, error) {
	log := c.log.Function("parsePrintedAt")

	if raw == nil {
		return time.Now(), nil
	}

	printedAt, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return time.Time{}, log.ErrorWithType(ErrValidation, "invalid printedAt", "error", err)
	}

	return printedAt, nil
}

func (c *LedgerController) publish(messageType events.MessageType, id uuid.UUID) {
	if c.eventBus == nil {
		return
	}

	err := c.eventBus.Publish(events.STORE_CHANNEL, events.Event{
		Type: messageType,
		Data: map[string]any{"id": id.String()},
	})
	if err != nil {
		c.log.Function("publish").Warn("failed to publish event", "type", messageType, "error", err)
	}
}
