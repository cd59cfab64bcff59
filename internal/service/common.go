package service

import (
	"context"
	"errors"

	"medshop/internal/apperror"
	"medshop/internal/cache"
	"medshop/internal/model"
	"medshop/internal/repository"
	ws "medshop/internal/websocket"
	"medshop/pkg/logger"

	"gorm.io/gorm"
)

// EventPublisher pushes realtime notifications to connected dashboards
type EventPublisher interface {
	Publish(event string, data any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// NopPublisher discards every event
var NopPublisher EventPublisher = nopPublisher{}

// StockEvent is the payload of stock_updated and low_stock
type StockEvent struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	PreviousQuantity int    `json:"previous_quantity"`
	NewQuantity      int    `json:"new_quantity"`
	ReorderLevel     int    `json:"reorder_level"`
}

// stockChange is collected inside a transaction and published after commit
type stockChange struct {
	item     model.InventoryItem
	previous int
}

func publishStockChanges(pub EventPublisher, changes []stockChange) {
	for _, ch := range changes {
		ev := StockEvent{
			ID:               ch.item.ID,
			Name:             ch.item.Name,
			PreviousQuantity: ch.previous,
			NewQuantity:      ch.item.Quantity,
			ReorderLevel:     ch.item.ReorderLevel,
		}
		pub.Publish(ws.EventStockUpdated, ev)
		if ch.item.IsLowStock() {
			pub.Publish(ws.EventLowStock, ev)
		}
	}
}

// invalidateStats drops cached dashboard aggregates; a failure only costs freshness
func invalidateStats(ctx context.Context, c cache.Cache) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		logger.Warn(ctx, "failed to invalidate dashboard cache", "error", err)
	}
}

// checkPeriod rejects a date range that ends before it starts
func checkPeriod(period repository.DateRange) error {
	if period.Inverted() {
		return apperror.NewValidation("endDate must not be before startDate")
	}
	return nil
}

// notFoundOr maps a missing row onto NotFound and anything else onto a database error
func notFoundOr(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFound(entity, id)
	}
	return apperror.NewDatabase(err)
}

// storeErr translates write failures; field names the unique column for duplicates
func storeErr(err error, entity, field string) error {
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.NewDuplicate(entity, field)
	}
	return apperror.NewDatabase(err)
}

// passThrough keeps AppErrors raised inside a transaction and wraps the rest
func passThrough(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewDatabase(err)
}

// orDefault returns def when s is blank
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
