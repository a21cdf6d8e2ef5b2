package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resto-pos/config"
	"resto-pos/dtos"
	"resto-pos/services"
	"resto-pos/utils"
)

// POST /orders/accept
func AcceptOrder(c *gin.Context) {
	var input dtos.AcceptOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewOrderService(config.DB, services.NewStockService(config.DB))
	order, err := service.Accept(input, utils.GetUsername(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]string, len(order.Lines))
	for i, line := range order.Lines {
		items[i] = line.Product.Name
	}
	go utils.NotifyKitchen(utils.KitchenNotification{
		OrderCode: order.ID,
		InvoiceNo: order.InvoiceNo,
		TableNo:   utils.GetStringValue(order.TableNo),
		Items:     items,
	})

	c.JSON(http.StatusCreated, order)
}

// POST /orders/preview-discount
func PreviewDiscount(c *gin.Context) {
	var input dtos.DiscountPreviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewDiscountService(config.DB)
	breakdown, err := service.Preview(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// POST /orders/checkout
func CheckoutOrder(c *gin.Context) {
	var input dtos.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewOrderService(config.DB, services.NewStockService(config.DB))
	receipt, err := service.Checkout(input, utils.GetUsername(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// DELETE /orders/:orderCode
func CancelOrder(c *gin.Context) {
	orderCode, ok := parseUintParam(c, "orderCode")
	if !ok {
		return
	}

	service := services.NewOrderService(config.DB, services.NewStockService(config.DB))
	if err := service.Cancel(orderCode, utils.GetUsername(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled, stock restored"})
}

// DELETE /orders/cancel-order?invoice_no=123
func CancelOrderByInvoice(c *gin.Context) {
	invoiceNo, err := strconv.Atoi(c.Query("invoice_no"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoice_no must be numeric"})
		return
	}

	service := services.NewOrderService(config.DB, services.NewStockService(config.DB))
	if err := service.CancelByInvoice(invoiceNo, utils.GetUsername(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled, stock restored"})
}

// DELETE /orders/:orderCode/items/:productCode
func RemoveOrderLine(c *gin.Context) {
	orderCode, ok := parseUintParam(c, "orderCode")
	if !ok {
		return
	}
	productCode, ok := parseUintParam(c, "productCode")
	if !ok {
		return
	}

	service := services.NewOrderService(config.DB, services.NewStockService(config.DB))
	if err := service.RemoveLine(orderCode, productCode, utils.GetUsername(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Line removed, stock restored"})
}

// GET /orders?posted=true&page=1&page_size=10
func GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	var posted *bool
	if raw := c.Query("posted"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "posted must be a boolean"})
			return
		}
		posted = &value
	}

	service := services.NewOrderService(config.DB, services.NewStockService(config.DB))
	orders, total, err := service.List(posted, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": orders,
		"meta": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}
