package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HenryPajuri/interparents2-sub000/internal/model"
	"github.com/HenryPajuri/interparents2-sub000/internal/policy"
	"github.com/HenryPajuri/interparents2-sub000/internal/repository"
)

type eventCreator struct {
	Name   string `json:"name"`
	School string `json:"school"`
}

type eventResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        string       `json:"type"`
	Date        string       `json:"date"`
	Time        string       `json:"time,omitempty"`
	Location    string       `json:"location,omitempty"`
	Description string       `json:"description,omitempty"`
	Organizer   string       `json:"organizer,omitempty"`
	School      string       `json:"school,omitempty"`
	IsPublic    bool         `json:"isPublic"`
	CreatedBy   eventCreator `json:"createdBy"`
	CanEdit     bool         `json:"canEdit"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

// mapEventResponse builds the public projection: the creator is exposed by
// name and school only, never by email or id.
func (s *Server) mapEventResponse(ctx context.Context, actor *model.Account, event model.Event, creators map[string]eventCreator) eventResponse {
	creator, ok := creators[event.CreatedBy]
	if !ok {
		if account, err := s.store.GetAccountByID(ctx, event.CreatedBy); err == nil {
			creator = eventCreator{Name: account.Name, School: account.School}
		}
		creators[event.CreatedBy] = creator
	}
	return eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Type:        event.Type,
		Date:        formatDate(event.Date),
		Time:        event.Time,
		Location:    event.Location,
		Description: event.Description,
		Organizer:   event.Organizer,
		School:      event.School,
		IsPublic:    event.IsPublic,
		CreatedBy:   creator,
		CanEdit:     policy.CanEditEvent(actor, event),
		CreatedAt:   event.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   event.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	filter, violations := eventFilterFromQuery(r)
	if len(violations) > 0 {
		writeValidationError(w, violations)
		return
	}

	events, err := s.store.ListEvents(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	creators := map[string]eventCreator{}
	visible := make([]eventResponse, 0, len(events))
	for _, event := range events {
		if !policy.CanReadEvent(actor, event) {
			continue
		}
		visible = append(visible, s.mapEventResponse(r.Context(), actor, event, creators))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  visible,
	})
}

func eventFilterFromQuery(r *http.Request) (repository.EventFilter, map[string]string) {
	query := r.URL.Query()
	violations := map[string]string{}

	filter := repository.EventFilter{
		From: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	switch {
	case query.Get("year") != "" || query.Get("month") != "":
		year, err := strconv.Atoi(query.Get("year"))
		if err != nil || year < 1970 || year > 2100 {
			violations["year"] = "invalid"
		}
		month, err := strconv.Atoi(query.Get("month"))
		if err != nil || month < 1 || month > 12 {
			violations["month"] = "invalid"
		}
		if len(violations) == 0 {
			filter.From = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			filter.To = filter.From.AddDate(0, 1, -1)
		}
	case query.Get("startDate") != "" || query.Get("endDate") != "":
		if from, ok := parseDate(query.Get("startDate")); ok {
			filter.From = from
		} else {
			violations["startDate"] = "invalid"
		}
		if to, ok := parseDate(query.Get("endDate")); ok {
			filter.To = to
		} else {
			violations["endDate"] = "invalid"
		}
	}

	if eventType := query.Get("type"); eventType != "" {
		if !model.ValidEventType(eventType) {
			violations["type"] = "invalid"
		}
		filter.Type = eventType
	}

	return filter, violations
}

type createEventRequest struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Organizer   string `json:"organizer,omitempty"`
	School      string `json:"school,omitempty"`
	IsPublic    bool   `json:"isPublic"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Type = strings.TrimSpace(strings.ToLower(req.Type))
	req.Time = strings.TrimSpace(req.Time)

	violations := map[string]string{}
	if req.Title == "" {
		violations["title"] = "required"
	}
	if req.Type == "" {
		violations["type"] = "required"
	} else if !model.ValidEventType(req.Type) {
		violations["type"] = "invalid"
	}
	var date time.Time
	if req.Date == "" {
		violations["date"] = "required"
	} else {
		parsed, ok := parseDate(req.Date)
		if !ok {
			violations["date"] = "invalid"
		}
		date = parsed
	}
	if req.Time != "" && !validTimeOfDay(req.Time) {
		violations["time"] = "invalid"
	}
	if len(violations) > 0 {
		writeValidationError(w, violations)
		return
	}

	school := strings.TrimSpace(req.School)
	if school == "" {
		school = actor.School
	}

	now := time.Now().UTC()
	event := model.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Type:        req.Type,
		Date:        date,
		Time:        req.Time,
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
		Organizer:   strings.TrimSpace(req.Organizer),
		CreatedBy:   actor.ID,
		School:      school,
		IsPublic:    req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateEvent(r.Context(), event); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	creators := map[string]eventCreator{
		actor.ID: {Name: actor.Name, School: actor.School},
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"event":   s.mapEventResponse(r.Context(), actor, event, creators),
	})
}

type updateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Type        *string `json:"type,omitempty"`
	Date        *string `json:"date,omitempty"`
	Time        *string `json:"time,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	Organizer   *string `json:"organizer,omitempty"`
	School      *string `json:"school,omitempty"`
	IsPublic    *bool   `json:"isPublic,omitempty"`
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	event, err := s.store.GetEventByID(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if !policy.CanEditEvent(actor, event) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	update := repository.EventUpdate{
		Location:    req.Location,
		Description: req.Description,
		Organizer:   req.Organizer,
		School:      req.School,
		IsPublic:    req.IsPublic,
	}
	violations := map[string]string{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			violations["title"] = "required"
		}
		update.Title = &title
	}
	if req.Type != nil {
		eventType := strings.TrimSpace(strings.ToLower(*req.Type))
		if !model.ValidEventType(eventType) {
			violations["type"] = "invalid"
		}
		update.Type = &eventType
	}
	if req.Date != nil {
		date, ok := parseDate(*req.Date)
		if !ok {
			violations["date"] = "invalid"
		}
		update.Date = &date
	}
	if req.Time != nil {
		eventTime := strings.TrimSpace(*req.Time)
		if eventTime != "" && !validTimeOfDay(eventTime) {
			violations["time"] = "invalid"
		}
		update.Time = &eventTime
	}
	if len(violations) > 0 {
		writeValidationError(w, violations)
		return
	}

	updated, err := s.store.UpdateEvent(r.Context(), event.ID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"event":   s.mapEventResponse(r.Context(), actor, updated, map[string]eventCreator{}),
	})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	event, err := s.store.GetEventByID(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if !policy.CanEditEvent(actor, event) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	deleted, err := s.store.DeleteEvent(r.Context(), event.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
