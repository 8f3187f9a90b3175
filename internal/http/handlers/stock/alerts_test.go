package stock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/constants"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"
)

func TestAlertScanAndAcknowledgeHandlers(t *testing.T) {
	r, variantRepo := setupStockHandlerTest(t)
	variant := createHandlerTestVariant(t, variantRepo, "SKU-H-ALERT", func(v *models.VariantStock) {
		v.Stock = 2
		v.LowStockThreshold = 5
	})

	// 队列未启用:巡检就地执行并返回检查数量
	_, resp := doJSON(t, r, http.MethodPost, "/stock/alerts/scan", nil)
	if resp.StatusCode != 0 {
		t.Fatalf("scan failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var scanData struct {
		Checked int `json:"checked"`
	}
	if err := json.Unmarshal(resp.Data, &scanData); err != nil {
		t.Fatalf("unmarshal scan data failed: %v", err)
	}
	if scanData.Checked != 1 {
		t.Fatalf("checked want 1 got %d", scanData.Checked)
	}

	_, resp = doJSON(t, r, http.MethodGet, "/stock/alerts?status=active", nil)
	if resp.StatusCode != 0 {
		t.Fatalf("list alerts failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var alerts []models.LowStockAlert
	if err := json.Unmarshal(resp.Data, &alerts); err != nil {
		t.Fatalf("unmarshal alerts failed: %v", err)
	}
	if len(alerts) != 1 || alerts[0].VariantID != variant.ID {
		t.Fatalf("unexpected alerts: %+v", alerts)
	}

	_, resp = doJSON(t, r, http.MethodPost, fmt.Sprintf("/stock/alerts/%d/acknowledge", variant.ID), nil)
	if resp.StatusCode != 0 {
		t.Fatalf("acknowledge failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var alert models.LowStockAlert
	if err := json.Unmarshal(resp.Data, &alert); err != nil {
		t.Fatalf("unmarshal alert failed: %v", err)
	}
	if alert.Status != constants.AlertStatusAcknowledged {
		t.Fatalf("status want acknowledged got %s", alert.Status)
	}
}

func TestAcknowledgeHandlerMissingAlert(t *testing.T) {
	r, _ := setupStockHandlerTest(t)

	_, resp := doJSON(t, r, http.MethodPost, "/stock/alerts/9999/acknowledge", nil)
	if resp.StatusCode != 404 {
		t.Fatalf("status_code want 404 got %d", resp.StatusCode)
	}

	_, resp = doJSON(t, r, http.MethodPost, "/stock/alerts/abc/acknowledge", nil)
	if resp.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", resp.StatusCode)
	}
}
