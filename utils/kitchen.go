package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

type KitchenNotification struct {
	OrderCode uint     `json:"order_code"`
	InvoiceNo int      `json:"invoice_no"`
	TableNo   string   `json:"table_no"`
	Items     []string `json:"items"`
}

// NotifyKitchen pushes a just-accepted order to the kitchen display webhook.
// Best effort: the order is already committed, a failed push only means the
// display falls back to polling the ticket table.
func NotifyKitchen(notification KitchenNotification) error {
	webhookURL := os.Getenv("KITCHEN_WEBHOOK_URL")
	if webhookURL == "" {
		return nil
	}

	jsonData, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %v", err)
	}

	req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kitchen webhook returned status %d", resp.StatusCode)
	}

	return nil
}
