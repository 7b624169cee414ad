package streams

// Stream name constants
const (
	StreamDeliveryReceipts = "delivery:receipts"
	StreamMessageEvents    = "message:events"
)

// Consumer group constants
const (
	GroupRelayWorkers    = "relay-workers"    // relay sidecar side
	GroupDispatchWorkers = "dispatch-workers" // our side
)

// Schema version constant
const (
	SchemaVersionV1 = "v1"
)

// Delivery receipt status values reported by the relay sidecar
const (
	ReceiptDelivered = "delivered"
	ReceiptRead      = "read"
	ReceiptFailed    = "failed"
)

// DeliveryReceipt is the relay sidecar's report on one outbound message,
// correlated by the provider message id returned at send time.
type DeliveryReceipt struct {
	ProviderMessageID string `json:"provider_message_id"`
	Status            string `json:"status"` // delivered/read/failed
	Error             string `json:"error"`  // set when status is failed
	Timestamp         int64  `json:"timestamp"`
}

// MessageSentEvent is published after a successful relay send so the
// realtime feed service can update open conversations without polling.
type MessageSentEvent struct {
	OrganizationID    uint   `json:"organization_id"`
	ClientID          uint   `json:"client_id"`
	Source            string `json:"source"` // dispatch/report/suggestion
	ProviderMessageID string `json:"provider_message_id"`
	Text              string `json:"text"`
}
