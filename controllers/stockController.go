package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-pos/config"
	"resto-pos/services"
)

// GET /stock/:productCode
func GetStockBalance(c *gin.Context) {
	productCode, ok := parseUintParam(c, "productCode")
	if !ok {
		return
	}

	service := services.NewStockService(config.DB)
	balance, err := service.CurrentBalance(productCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// GET /stock/:productCode/history
func GetStockHistory(c *gin.Context) {
	productCode, ok := parseUintParam(c, "productCode")
	if !ok {
		return
	}

	service := services.NewStockService(config.DB)
	history, err := service.History(productCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
