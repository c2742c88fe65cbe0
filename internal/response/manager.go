package response

import (
	"fmt"
	"time"

	"secscan-go/internal/database"
	"secscan-go/internal/helper"
	"secscan-go/internal/incident"
	"secscan-go/internal/models"
	"secscan-go/internal/notify"
	"secscan-go/internal/severity"
	"secscan-go/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// Manager drives the incident lifecycle state machine and persists every
// transition with its timeline entry.
type Manager struct {
	db         *database.Database
	dispatcher *notify.Dispatcher
	tracker    *telemetry.Tracker
}

func NewManager(db *database.Database, dispatcher *notify.Dispatcher, tracker *telemetry.Tracker) *Manager {
	return &Manager{
		db:         db,
		dispatcher: dispatcher,
		tracker:    tracker,
	}
}

// Create opens a new incident. Priority is derived from the triggering
// severity. P1/P2 incidents notify the alerting channel asynchronously;
// a delivery failure never fails the creation.
func (m *Manager) Create(sev severity.Severity, title, description string) (*models.Incident, error) {
	if !sev.Valid() {
		return nil, fmt.Errorf("cannot create incident: unrecognized severity %q", sev)
	}

	now := time.Now().UTC()
	inc := &models.Incident{
		ID:          helper.GenerateRandomID(),
		Status:      incident.Open,
		Priority:    incident.PriorityFor(sev),
		Severity:    sev,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Timeline: []models.IncidentEvent{
			{
				Status:    incident.Open,
				Message:   "Incident created",
				CreatedAt: now,
			},
		},
	}

	if err := m.db.SaveIncident(inc); err != nil {
		return nil, err
	}

	m.tracker.TrackEvent("IncidentCreated", map[string]any{
		"incident_id": inc.ID,
		"severity":    string(sev),
		"priority":    string(inc.Priority),
	})

	if inc.Priority == incident.P1 || inc.Priority == incident.P2 {
		if m.dispatcher != nil {
			m.dispatcher.Enqueue("incidentCreated", inc)
		}
	}

	log.Info().
		Str("incident_id", inc.ID).
		Str("priority", string(inc.Priority)).
		Str("title", title).
		Msg("incident created")

	return inc, nil
}

// UpdateRequest carries the optional fields of one incident update.
type UpdateRequest struct {
	Status     *incident.Status `json:"status,omitempty"`
	Message    string           `json:"message,omitempty"`
	AssignedTo *string          `json:"assigned_to,omitempty"`
}

// Update applies a transition and appends exactly one timeline entry. An
// unreachable target status is rejected and the incident left unchanged.
func (m *Manager) Update(id string, req UpdateRequest) (*models.Incident, error) {
	inc, err := m.db.GetIncident(id)
	if err != nil {
		return nil, err
	}
	if inc == nil {
		return nil, fmt.Errorf("incident %s not found", id)
	}

	status := inc.Status
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", incident.ErrInvalidTransition, *req.Status)
		}
		if !incident.CanTransition(inc.Status, *req.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", incident.ErrInvalidTransition, inc.Status, *req.Status)
		}
		status = *req.Status
	}

	now := time.Now().UTC()
	message := req.Message
	if message == "" {
		message = fmt.Sprintf("Status changed to %s", status)
	}

	inc.Status = status
	inc.UpdatedAt = now
	if req.AssignedTo != nil {
		inc.AssignedTo = *req.AssignedTo
	}
	inc.Timeline = append(inc.Timeline, models.IncidentEvent{
		IncidentID: inc.ID,
		Status:     status,
		Message:    message,
		CreatedAt:  now,
	})

	if err := m.db.SaveIncident(inc); err != nil {
		return nil, err
	}

	m.tracker.TrackEvent("IncidentUpdated", map[string]any{
		"incident_id": inc.ID,
		"new_status":  string(status),
	})

	return inc, nil
}

// Active returns all incidents still being worked, newest first.
func (m *Manager) Active() ([]models.Incident, error) {
	return m.db.GetActiveIncidents()
}

func (m *Manager) Get(id string) (*models.Incident, error) {
	return m.db.GetIncident(id)
}
