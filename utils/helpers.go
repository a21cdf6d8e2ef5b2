package utils

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
)

func GetUserRole(c *gin.Context) string {
	role, _ := c.Get("role")
	if role == nil {
		return ""
	}
	return role.(string)
}

func GetUsername(c *gin.Context) string {
	username, _ := c.Get("username")
	if username == nil {
		return ""
	}
	return username.(string)
}

func GetUserID(c *gin.Context) *uint {
	if value, exists := c.Get("user_id"); exists {
		if id, ok := value.(uint); ok {
			return &id
		}
	}
	return nil
}

func GetStringValue(ptr *string) string {
	if ptr != nil {
		return *ptr
	}
	return ""
}

func PtrString(s string) *string {
	return &s
}

func ToJSONString(v interface{}) *string {
	if v == nil {
		return nil
	}
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	str := string(bytes)
	return &str
}
