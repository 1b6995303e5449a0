package jobs

import (
	"context"

	"filadex/internal/events"
	"filadex/internal/logger"
	"filadex/internal/services"
)

// PrinterPollJob periodically polls the vendor cloud for completed print
// tasks. The resulting count is a display-only signal surfaced through the
// stats endpoint; store state is never mutated here.
type PrinterPollJob struct {
	printerStatus *services.PrinterStatusService
	eventBus      *events.EventBus
	schedule      services.Schedule
	log           logger.Logger
}

func NewPrinterPollJob(
	printerStatus *services.PrinterStatusService,
	eventBus *events.EventBus,
	schedule services.Schedule,
) *PrinterPollJob {
	return &PrinterPollJob{
		printerStatus: printerStatus,
		eventBus:      eventBus,
		schedule:      schedule,
		log:           logger.New("printerPollJob"),
	}
}

func (j *PrinterPollJob) Name() string {
	return "printer-status-poll"
}

func (j *PrinterPollJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *PrinterPollJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	if err := j.printerStatus.PollTasks(ctx); err != nil {
		return log.Err("printer status poll failed", err)
	}

	if j.eventBus != nil {
		err := j.eventBus.Publish(events.STORE_CHANNEL, events.Event{
			Type: events.PRINTER_OBSERVED,
			Data: map[string]any{
				"observedPrintCount": j.printerStatus.ObservedPrintCount(),
			},
		})
		if err != nil {
			log.Warn("failed to publish printer observation", "error", err)
		}
	}

	return nil
}
