package rounding

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/rounds/internal/platform/websocket"
)

type ChangeKind string

const (
	ChangeCreated ChangeKind = "sheet.created"
	ChangeUpdated ChangeKind = "sheet.updated"
	ChangeDeleted ChangeKind = "sheet.deleted"
	ChangeReset   ChangeKind = "workspace.reset"
)

// TopicWorkspace carries every change to the working set.
const TopicWorkspace = "workspace"

// SheetTopic carries the changes to one sheet.
func SheetTopic(id uuid.UUID) string {
	return "sheet/" + id.String()
}

// Change describes one committed mutation. Sheet is the new state for
// created and updated sheets and nil otherwise.
type Change struct {
	Kind    ChangeKind
	SheetID uuid.UUID
	Sheet   *Sheet
	At      time.Time
}

type ChangeNotifier interface {
	Notify(ctx context.Context, c Change)
}

// HubNotifier publishes changes to websocket subscribers of the workspace
// topic and of the affected sheet's topic.
type HubNotifier struct {
	hub    *websocket.Hub
	logger zerolog.Logger
}

func NewHubNotifier(hub *websocket.Hub, logger zerolog.Logger) *HubNotifier {
	return &HubNotifier{hub: hub, logger: logger}
}

func (n *HubNotifier) Notify(ctx context.Context, c Change) {
	event := websocket.Event{Type: string(c.Kind), Timestamp: c.At}
	if c.SheetID != uuid.Nil {
		event.SheetID = c.SheetID.String()
	}
	if c.Sheet != nil {
		data, err := json.Marshal(c.Sheet)
		if err != nil {
			n.logger.Error().Err(err).Str("sheet_id", event.SheetID).Msg("failed to encode sheet change")
			return
		}
		event.Data = data
	}

	topics := []string{TopicWorkspace}
	if c.SheetID != uuid.Nil {
		topics = append(topics, SheetTopic(c.SheetID))
	}
	for _, topic := range topics {
		event.Topic = topic
		_ = n.hub.Publish(ctx, event)
	}
}
