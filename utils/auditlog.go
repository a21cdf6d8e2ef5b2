package utils

import (
	"gorm.io/gorm"

	"resto-pos/models"
)

// CreateOrderAuditLog records an order state transition. It takes the
// caller's *gorm.DB so the log row commits or rolls back with the mutation
// it describes.
func CreateOrderAuditLog(
	db *gorm.DB,
	action string,
	entityID uint,
	oldOrder, newOrder *models.Order,
	userID *uint,
	description string,
) error {
	auditLog := models.AuditLog{
		EntityType:  "order",
		EntityID:    entityID,
		Action:      action,
		UserID:      userID,
		OldValue:    orderJSON(oldOrder),
		NewValue:    orderJSON(newOrder),
		Description: description,
	}
	return db.Create(&auditLog).Error
}

func orderJSON(order *models.Order) *string {
	if order == nil {
		return nil
	}
	return ToJSONString(order)
}
