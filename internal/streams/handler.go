package streams

import (
	"fmt"
	"log/slog"

	"github.com/zapflow/zapflow/internal/models"
	"gorm.io/gorm"
)

// HandleDeliveryReceipt returns a handler that applies a relay delivery
// receipt to whichever outbound record carries the provider message id:
// a scheduled message (dispatch) or a sent suggestion. Receipts for ids we
// don't know are ACKed and dropped; the relay also carries traffic sent
// manually from the dashboard.
func HandleDeliveryReceipt(db *gorm.DB) func(DeliveryReceipt) error {
	return func(receipt DeliveryReceipt) error {
		if receipt.ProviderMessageID == "" {
			return fmt.Errorf("receipt missing provider_message_id")
		}

		switch receipt.Status {
		case ReceiptDelivered, ReceiptRead, ReceiptFailed:
		default:
			return fmt.Errorf("unknown receipt status: %s", receipt.Status)
		}

		// Dispatches: a failed receipt flips a sent dispatch to failed.
		if receipt.Status == ReceiptFailed {
			res := db.Model(&models.ScheduledMessage{}).
				Where("provider_message_id = ? AND status = ?", receipt.ProviderMessageID, models.DispatchStatusSent).
				Updates(map[string]interface{}{
					"status":        models.DispatchStatusFailed,
					"error_message": receipt.Error,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to update dispatch: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				slog.Warn("Dispatch delivery failed",
					"provider_message_id", receipt.ProviderMessageID,
					"error", receipt.Error,
				)
				return nil
			}

			res = db.Model(&models.ActiveSuggestion{}).
				Where("provider_message_id = ?", receipt.ProviderMessageID).
				Update("status", models.SuggestionStatusApproved) // back to approved for re-send
			if res.Error != nil {
				return fmt.Errorf("failed to update suggestion: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				slog.Warn("Suggestion delivery failed, re-queued for send",
					"provider_message_id", receipt.ProviderMessageID,
					"error", receipt.Error,
				)
			}
			return nil
		}

		slog.Debug("Delivery receipt applied",
			"provider_message_id", receipt.ProviderMessageID,
			"status", receipt.Status,
		)
		return nil
	}
}
