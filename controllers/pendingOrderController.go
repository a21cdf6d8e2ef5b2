package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resto-pos/dtos"
	"resto-pos/services"
)

// pendingStore is process-local by default. UsePendingStore swaps in a
// durable implementation without touching the handlers.
var pendingStore services.PendingStore = services.NewMemoryPendingStore()

func UsePendingStore(store services.PendingStore) {
	pendingStore = store
}

// POST /orders/pending
func SubmitPendingOrder(c *gin.Context) {
	var input dtos.PendingSubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := pendingStore.Submit(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GET /orders/pending?table_no=7
func GetPendingOrders(c *gin.Context) {
	c.JSON(http.StatusOK, pendingStore.List(c.Query("table_no")))
}

// DELETE /orders/pending/:handle
func RemovePendingOrder(c *gin.Context) {
	if err := pendingStore.Remove(c.Param("handle")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pending order removed"})
}

// PATCH /orders/pending/:handle
func RemovePendingOrderItem(c *gin.Context) {
	var input dtos.PendingRemoveItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := pendingStore.RemoveItem(c.Param("handle"), input.RemoveProductCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if record == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Last item removed, pending order deleted"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be numeric"})
		return 0, false
	}
	return uint(value), true
}
