package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"p9e.in/ocpipeline/config"
	"p9e.in/ocpipeline/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRecorder is a fire-and-forget side channel for operational log
// entries. Events are emitted after the primary transaction commits and
// written by a single background goroutine; a failed or dropped write is
// logged and never surfaced to the caller.
type ActivityRecorder struct {
	db     *gorm.DB
	events chan models.ActivityLog
}

var (
	recorderOnce sync.Once
	recorder     *ActivityRecorder
)

// NewActivityRecorder returns the shared recorder, starting its writer
// goroutine on first use.
func NewActivityRecorder() *ActivityRecorder {
	recorderOnce.Do(func() {
		recorder = &ActivityRecorder{
			db:     config.DB,
			events: make(chan models.ActivityLog, 256),
		}
		go recorder.run()
	})
	return recorder
}

func (ar *ActivityRecorder) run() {
	for event := range ar.events {
		if err := ar.db.Create(&event).Error; err != nil {
			log.Printf("⚠️  Dropped activity log entry (%s %s): %v", event.EntityType, event.Action, err)
		}
	}
}

// Record enqueues an event. When the buffer is full the event is dropped
// rather than blocking the request path.
func (ar *ActivityRecorder) Record(entityType string, entityID uuid.UUID, action, actorID, actorName, detail string) {
	event := models.ActivityLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		ActorName:  actorName,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
	select {
	case ar.events <- event:
	default:
		log.Printf("⚠️  Activity log buffer full, dropping entry (%s %s)", entityType, action)
	}
}

// GetActivityLog returns recent activity entries, optionally filtered by
// entity type and id.
func GetActivityLog(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Model(&models.ActivityLog{})

	if entityType := r.URL.Query().Get("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID := r.URL.Query().Get("entity_id"); entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}

	var entries []models.ActivityLog
	if err := query.Order("occurred_at DESC").Limit(200).Find(&entries).Error; err != nil {
		http.Error(w, "Failed to fetch activity log", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}
