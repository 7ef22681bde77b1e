// Package usersink forwards form activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-formsync/pkg/activity"
)

// ObjectType is the activity object type recorded for forms.
const ObjectType = "form"

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps the event into an ActivityRecord keyed by the form id and
// forwards it to the sink. Submission details travel in the record data.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.FormID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data := make(map[string]any, len(normalized.Metadata)+4)
	for key, value := range normalized.Metadata {
		data[key] = value
	}
	if normalized.SubmissionID != "" {
		data["submission_id"] = normalized.SubmissionID
	}
	if normalized.Method != "" {
		data["method"] = normalized.Method
	}
	if normalized.URL != "" {
		data["url"] = normalized.URL
	}
	if normalized.Status != 0 {
		data["status"] = normalized.Status
	}
	if len(data) == 0 {
		data = nil
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(normalized.ActorID),
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: ObjectType,
		ObjectID:   normalized.FormID,
		Channel:    normalized.Channel,
		Data:       data,
		OccurredAt: normalized.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	return h.Sink.Log(ctx, record)
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
