// Package dispatch implements the outbound send pipeline: due one-off
// dispatches, due recurring reports and approved suggestions, plus the
// manual-override gate that keeps automation out of conversations a human
// has taken over.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zapflow/zapflow/internal/models"
	"github.com/zapflow/zapflow/internal/render"
	"github.com/zapflow/zapflow/internal/streams"
	"github.com/zapflow/zapflow/internal/webhook"
	"gorm.io/gorm"
)

// Relay is the outbound message surface. Implemented by webhook.Client.
type Relay interface {
	Send(ctx context.Context, req webhook.SendRequest) (string, error)
}

// EventPublisher emits sent-message events for the realtime feed. May be nil
// (events are then dropped with a debug log).
type EventPublisher interface {
	PublishMessageSent(ctx context.Context, event streams.MessageSentEvent) (string, error)
}

// RunResult summarizes one dispatch invocation.
type RunResult struct {
	Sent    int
	Skipped int
	Failed  int
	Logs    []string
}

func (r *RunResult) logf(format string, args ...any) {
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}

// Dispatcher processes everything due for sending. Items are processed
// sequentially with per-item isolation: one failing send never blocks the
// rest of the run.
type Dispatcher struct {
	db        *gorm.DB
	relay     Relay
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher creates a dispatcher. now may be nil (wall clock).
func NewDispatcher(db *gorm.DB, relay Relay, publisher EventPublisher, logger *slog.Logger, now func() time.Time) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{db: db, relay: relay, publisher: publisher, logger: logger, now: now}
}

// Run processes due dispatches, due reports and approved suggestions.
func (d *Dispatcher) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	d.runDispatches(ctx, result)
	d.runReports(ctx, result)
	d.runApprovedSuggestions(ctx, result)

	d.logger.Info("Dispatch run finished",
		"sent", result.Sent,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// runDispatches sends pending one-off scheduled messages whose send_at has
// arrived.
func (d *Dispatcher) runDispatches(ctx context.Context, result *RunResult) {
	var due []models.ScheduledMessage
	err := d.db.WithContext(ctx).
		Preload("Client").
		Where("status = ? AND send_at <= ?", models.DispatchStatusPending, d.now()).
		Order("send_at").
		Find(&due).Error
	if err != nil {
		result.logf("error listing due dispatches: %v", err)
		return
	}

	for i := range due {
		msg := &due[i]

		gate, err := ApplyGated(&msg.Client, func() error {
			providerID, sendErr := d.send(ctx, msg.OrganizationID, msg.ClientID, msg.Body, "dispatch")
			if sendErr != nil {
				d.db.Model(msg).Updates(map[string]interface{}{
					"status":        models.DispatchStatusFailed,
					"error_message": sendErr.Error(),
				})
				return sendErr
			}
			return d.db.Model(msg).Updates(map[string]interface{}{
				"status":              models.DispatchStatusSent,
				"provider_message_id": providerID,
				"error_message":       "",
			}).Error
		})

		switch {
		case err != nil:
			result.Failed++
			result.logf("dispatch failed for %s: %v", msg.Client.Name, err)
			d.logger.Error("Dispatch send failed", "dispatch_id", msg.ID, "client", msg.Client.Name, "error", err.Error())
		case gate.Skipped:
			result.Skipped++
			result.logf("dispatch skipped for %s: %s", msg.Client.Name, gate.Reason)
		default:
			result.Sent++
			result.logf("dispatch sent to %s", msg.Client.Name)
		}
	}
}

// runReports renders and sends active reports whose next_run has arrived,
// then advances their schedule.
func (d *Dispatcher) runReports(ctx context.Context, result *RunResult) {
	var due []models.ScheduledReport
	err := d.db.WithContext(ctx).
		Preload("Client").
		Preload("Organization").
		Where("active = ? AND next_run IS NOT NULL AND next_run <= ?", true, d.now()).
		Order("next_run").
		Find(&due).Error
	if err != nil {
		result.logf("error listing due reports: %v", err)
		return
	}

	for i := range due {
		report := &due[i]

		body, err := d.renderReport(ctx, report)
		if err != nil {
			result.Failed++
			result.logf("report failed for %s: %v", report.Client.Name, err)
			d.logger.Error("Report render failed", "report_id", report.ID, "client", report.Client.Name, "error", err.Error())
			continue
		}

		gate, err := ApplyGated(&report.Client, func() error {
			_, sendErr := d.send(ctx, report.OrganizationID, report.ClientID, body, "report")
			return sendErr
		})
		if err != nil {
			result.Failed++
			result.logf("report failed for %s: %v", report.Client.Name, err)
			d.logger.Error("Report send failed", "report_id", report.ID, "client", report.Client.Name, "error", err.Error())
			continue
		}
		if gate.Skipped {
			result.Skipped++
			result.logf("report skipped for %s: %s", report.Client.Name, gate.Reason)
			// Still advance the schedule: a held conversation should not
			// make the report fire immediately once the override lifts.
		} else {
			result.Sent++
			result.logf("report sent to %s", report.Client.Name)
		}

		now := d.now()
		next, err := NextRunFor(report, now, report.Organization.Timezone)
		if err != nil {
			// Invalid cadence rows would otherwise stay due forever;
			// deactivate and surface in the logs.
			result.logf("report for %s has invalid cadence, deactivating: %v", report.Client.Name, err)
			d.db.Model(report).Updates(map[string]interface{}{"active": false})
			continue
		}
		d.db.Model(report).Updates(map[string]interface{}{
			"last_run": now,
			"next_run": next,
		})
	}
}

// renderReport renders the report template against the client's latest
// metrics snapshot, using the organization's locale and currency.
func (d *Dispatcher) renderReport(ctx context.Context, report *models.ScheduledReport) (string, error) {
	var metrics models.ClientMetrics
	err := d.db.WithContext(ctx).
		Where("client_id = ?", report.ClientID).
		Order("period_start DESC").
		First(&metrics).Error
	if err != nil {
		return "", fmt.Errorf("no metrics for client: %w", err)
	}

	r := render.NewRenderer(report.Organization.Locale, report.Organization.Currency)
	return r.Render(report.Template, render.ReportValues(metrics)), nil
}

// runApprovedSuggestions sends approved check-in suggestions and flips them
// to sent.
func (d *Dispatcher) runApprovedSuggestions(ctx context.Context, result *RunResult) {
	var approved []models.ActiveSuggestion
	err := d.db.WithContext(ctx).
		Preload("Client").
		Where("status = ?", models.SuggestionStatusApproved).
		Order("id").
		Find(&approved).Error
	if err != nil {
		result.logf("error listing approved suggestions: %v", err)
		return
	}

	for i := range approved {
		suggestion := &approved[i]

		gate, err := ApplyGated(&suggestion.Client, func() error {
			providerID, sendErr := d.send(ctx, suggestion.OrganizationID, suggestion.ClientID, suggestion.SuggestedMessage, "suggestion")
			if sendErr != nil {
				return sendErr
			}
			return d.db.Model(suggestion).Updates(map[string]interface{}{
				"status":              models.SuggestionStatusSent,
				"provider_message_id": providerID,
			}).Error
		})

		switch {
		case err != nil:
			result.Failed++
			result.logf("suggestion send failed for %s: %v", suggestion.Client.Name, err)
			d.logger.Error("Suggestion send failed", "suggestion_id", suggestion.ID, "client", suggestion.Client.Name, "error", err.Error())
		case gate.Skipped:
			result.Skipped++
			result.logf("suggestion skipped for %s: %s", suggestion.Client.Name, gate.Reason)
		default:
			result.Sent++
			result.logf("suggestion sent to %s", suggestion.Client.Name)
		}
	}
}

// send resolves the organization's active WhatsApp instance, relays the
// message and publishes the sent event.
func (d *Dispatcher) send(ctx context.Context, orgID, clientID uint, text, source string) (string, error) {
	var instance models.WhatsAppInstance
	err := d.db.WithContext(ctx).
		Where("organization_id = ? AND active = ?", orgID, true).
		First(&instance).Error
	if err != nil {
		return "", fmt.Errorf("no active WhatsApp instance for organization %d: %w", orgID, err)
	}

	providerID, err := d.relay.Send(ctx, webhook.SendRequest{
		Action:         webhook.ActionSendText,
		OrganizationID: orgID,
		ClientID:       clientID,
		InstanceID:     instance.InstanceID,
		MessageID:      uuid.New().String(),
		Text:           text,
	})
	if err != nil {
		return "", err
	}

	if d.publisher != nil {
		if _, pubErr := d.publisher.PublishMessageSent(ctx, streams.MessageSentEvent{
			OrganizationID:    orgID,
			ClientID:          clientID,
			Source:            source,
			ProviderMessageID: providerID,
			Text:              text,
		}); pubErr != nil {
			d.logger.Warn("Failed to publish sent event", "error", pubErr.Error())
		}
	} else {
		d.logger.Debug("Event publisher not configured, dropping sent event")
	}

	return providerID, nil
}
