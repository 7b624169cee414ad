// Package webhook provides the client for the outbound WhatsApp relay.
package webhook

// Send actions understood by the relay
const (
	ActionSendText = "send_text"
)

// SendRequest is the payload the relay expects for an outbound message.
// MessageID is our correlation id; the relay answers with its own provider
// message id, which we store to match delivery receipts later.
type SendRequest struct {
	Action         string `json:"action"`
	OrganizationID uint   `json:"organization_id"`
	ClientID       uint   `json:"client_id"`
	InstanceID     string `json:"instance_id"`
	MessageID      string `json:"message_id"`
	Text           string `json:"text"`
}

// SendResponse is the relay's answer to a send request.
type SendResponse struct {
	ProviderMessageID string `json:"provider_message_id"`
}
