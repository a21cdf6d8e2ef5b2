package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resto-pos/config"
	"resto-pos/models"
)

type TopProduct struct {
	ProductCode uint   `json:"product_code"`
	Name        string `json:"name"`
	Quantity    int64  `json:"quantity"`
}

// GET /dashboard
func GetDashboard(c *gin.Context) {
	dayStart := time.Now().Truncate(24 * time.Hour)

	var todayRevenue float64
	config.DB.Model(&models.Order{}).
		Where("posted = ? AND updated_at >= ?", true, dayStart).
		Select("COALESCE(SUM(total_due), 0)").
		Scan(&todayRevenue)

	var postedToday int64
	config.DB.Model(&models.Order{}).
		Where("posted = ? AND updated_at >= ?", true, dayStart).
		Count(&postedToday)

	var openOrders int64
	config.DB.Model(&models.Order{}).
		Where("posted = ?", false).
		Count(&openOrders)

	var topProducts []TopProduct
	config.DB.Model(&models.OrderLine{}).
		Select("order_lines.product_code, products.name, SUM(order_lines.quantity) as quantity").
		Joins("JOIN orders ON orders.id = order_lines.order_code").
		Joins("JOIN products ON products.id = order_lines.product_code").
		Where("orders.posted = ? AND orders.updated_at >= ?", true, dayStart).
		Group("order_lines.product_code, products.name").
		Order("quantity DESC").
		Limit(5).
		Scan(&topProducts)

	c.JSON(http.StatusOK, gin.H{
		"today_revenue": todayRevenue,
		"posted_today":  postedToday,
		"open_orders":   openOrders,
		"top_products":  topProducts,
	})
}
