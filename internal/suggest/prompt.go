package suggest

import (
	"fmt"
	"strings"

	"github.com/zapflow/zapflow/internal/models"
)

// systemPrompt instructs the LLM to draft check-in options as a bare JSON
// array so the response can be parsed without post-processing.
const systemPrompt = `You are an assistant for a marketing agency that manages client relationships over WhatsApp.
Draft short, warm check-in messages the account manager could send to the client.

You must output ONLY a JSON array of 2 to 3 message strings, in the client's language.

RULES:
1. Each message must stand alone and be ready to send as-is.
2. Reference the provided conversation and task context when it is relevant; never invent facts.
3. Keep each message under 300 characters, no emoji unless the client used them first.
4. Output ONLY the JSON array, no markdown, no explanation.`

// buildPrompt assembles the system+user prompt pair for one automation.
func buildPrompt(auto *models.ActiveAutomation, messages []models.Message, tasks []models.Task) (string, string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Client: %s\n", auto.Client.Name)

	if auto.Guidance != "" {
		fmt.Fprintf(&b, "\nAgency guidance for this client:\n%s\n", auto.Guidance)
	}

	if len(messages) == 0 {
		b.WriteString("\nNo recent conversation with this client.\n")
	} else {
		fmt.Fprintf(&b, "\nRecent conversation (newest first, last %d entries):\n", len(messages))
		for _, m := range messages {
			who := "client"
			if m.Direction == models.DirectionOutbound {
				who = "agency"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", who, m.Body)
		}
	}

	if len(tasks) > 0 {
		fmt.Fprintf(&b, "\nOpen tasks for this client:\n")
		for _, t := range tasks {
			fmt.Fprintf(&b, "- %s (%s)\n", t.Title, t.Status)
		}
	}

	b.WriteString("\nWrite the check-in message options now.")
	return systemPrompt, b.String()
}
