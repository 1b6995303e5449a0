package services

import (
	"filadex/config"
	"filadex/internal/database"
)

type Service struct {
	Transaction   *TransactionService
	Scheduler     *SchedulerService
	PrinterStatus *PrinterStatusService
}

func New(db database.DB, config config.Config) Service {
	return Service{
		Transaction:   NewTransactionService(db),
		Scheduler:     NewSchedulerService(),
		PrinterStatus: NewPrinterStatusService(config),
	}
}
