package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/studymate/server/model"
	"gorm.io/gorm"
)

// EventHandler serves the /events/ resource. Bodies are the bare event
// representation, without the message envelope.
type EventHandler struct {
	db  *gorm.DB
	now func() time.Time
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{db: db, now: time.Now}
}

type eventView struct {
	ID               int64      `json:"id"`
	EventTitle       string     `json:"event_title"`
	EventDescription *string    `json:"event_description"`
	StartDatetime    time.Time  `json:"start_datetime"`
	EndDatetime      time.Time  `json:"end_datetime"`
	RecurringRule    *string    `json:"recurring_rule"`
	NextOccurrence   *time.Time `json:"next_occurrence"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Participants     []int64    `json:"participants"`
	Groups           []int64    `json:"groups"`
}

// eventRequest is used for POST, PUT and PATCH. PATCH leaves nil fields
// unchanged; POST and PUT require title and both datetimes.
type eventRequest struct {
	EventTitle       *string    `json:"event_title" binding:"omitempty,min=1,max=255"`
	EventDescription *string    `json:"event_description"`
	StartDatetime    *time.Time `json:"start_datetime"`
	EndDatetime      *time.Time `json:"end_datetime"`
	RecurringRule    *string    `json:"recurring_rule" binding:"omitempty,max=255"`
	Participants     *[]int64   `json:"participants"`
	Groups           *[]int64   `json:"groups"`
}

func (r *eventRequest) complete() error {
	switch {
	case r.EventTitle == nil:
		return &requestError{status: http.StatusBadRequest, msg: "event_title is required"}
	case r.StartDatetime == nil:
		return &requestError{status: http.StatusBadRequest, msg: "start_datetime is required"}
	case r.EndDatetime == nil:
		return &requestError{status: http.StatusBadRequest, msg: "end_datetime is required"}
	}
	return nil
}

// parseRule parses a standard five-field cron expression. Empty rules are
// treated as "no recurrence".
func parseRule(rule *string) (cron.Schedule, error) {
	if rule == nil || strings.TrimSpace(*rule) == "" {
		return nil, nil
	}
	sched, err := cron.ParseStandard(*rule)
	if err != nil {
		return nil, &requestError{status: http.StatusBadRequest, msg: "Invalid recurring_rule: " + err.Error()}
	}
	return sched, nil
}

func (h *EventHandler) view(e *model.Event) eventView {
	v := eventView{
		ID:               e.ID,
		EventTitle:       e.EventTitle,
		EventDescription: e.EventDescription,
		StartDatetime:    e.StartDatetime,
		EndDatetime:      e.EndDatetime,
		RecurringRule:    e.RecurringRule,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
		Participants:     e.ParticipantIDs(),
		Groups:           e.GroupIDs(),
	}
	// Rules were validated on write; a rule that no longer parses just has no
	// next occurrence.
	if sched, err := parseRule(e.RecurringRule); err == nil && sched != nil {
		from := h.now()
		if e.StartDatetime.After(from) {
			from = e.StartDatetime.Add(-time.Second)
		}
		next := sched.Next(from)
		if !next.IsZero() {
			v.NextOccurrence = &next
		}
	}
	return v
}

// List handles GET /events/.
func (h *EventHandler) List(c *gin.Context) {
	var events []model.Event
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Participants").Preload("Groups").Order("id").Find(&events).Error; err != nil {
		internalError(c, err)
		return
	}
	views := make([]eventView, len(events))
	for i := range events {
		views[i] = h.view(&events[i])
	}
	c.JSON(http.StatusOK, views)
}

// Create handles POST /events/.
func (h *EventHandler) Create(c *gin.Context) {
	var req eventRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.complete(); err != nil {
		writeRequestError(c, err)
		return
	}
	var e model.Event
	if err := h.apply(c, &e, &req, true); err != nil {
		writeRequestError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(&e))
}

// Get handles GET /events/:id/.
func (h *EventHandler) Get(c *gin.Context) {
	e, found := h.load(c)
	if !found {
		return
	}
	c.JSON(http.StatusOK, h.view(e))
}

// Update handles PUT /events/:id/, replacing every writable field.
func (h *EventHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Patch handles PATCH /events/:id/.
func (h *EventHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *EventHandler) update(c *gin.Context, partial bool) {
	e, found := h.load(c)
	if !found {
		return
	}
	var req eventRequest
	if !bindJSON(c, &req) {
		return
	}
	if !partial {
		if err := req.complete(); err != nil {
			writeRequestError(c, err)
			return
		}
		if req.Participants == nil {
			req.Participants = &[]int64{}
		}
		if req.Groups == nil {
			req.Groups = &[]int64{}
		}
	}
	if err := h.apply(c, e, &req, false); err != nil {
		writeRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(e))
}

// Delete handles DELETE /events/:id/.
func (h *EventHandler) Delete(c *gin.Context) {
	e, found := h.load(c)
	if !found {
		return
	}
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(e).Association("Participants").Clear(); err != nil {
			return err
		}
		if err := tx.Model(e).Association("Groups").Clear(); err != nil {
			return err
		}
		return tx.Delete(e).Error
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// apply validates req against e and persists the result with its
// participant and group links.
func (h *EventHandler) apply(c *gin.Context, e *model.Event, req *eventRequest, create bool) error {
	if req.EventTitle != nil {
		e.EventTitle = *req.EventTitle
	}
	if req.EventDescription != nil {
		e.EventDescription = req.EventDescription
	}
	if req.StartDatetime != nil {
		e.StartDatetime = *req.StartDatetime
	}
	if req.EndDatetime != nil {
		e.EndDatetime = *req.EndDatetime
	}
	if req.RecurringRule != nil {
		e.RecurringRule = req.RecurringRule
	}
	if e.EndDatetime.Before(e.StartDatetime) {
		return &requestError{status: http.StatusBadRequest, msg: "end_datetime must not be before start_datetime"}
	}
	if _, err := parseRule(e.RecurringRule); err != nil {
		return err
	}

	return h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var participants []model.Student
		if req.Participants != nil {
			var found bool
			var err error
			participants, found, err = studentsExist(tx, *req.Participants)
			if err != nil {
				return err
			}
			if !found {
				return &requestError{status: http.StatusBadRequest, msg: "Invalid participant id"}
			}
		}
		var groups []model.Group
		if req.Groups != nil {
			ids := uniqueIDs(*req.Groups)
			if len(ids) > 0 {
				if err := tx.Where("id IN ?", ids).Find(&groups).Error; err != nil {
					return err
				}
				if len(groups) != len(ids) {
					return &requestError{status: http.StatusBadRequest, msg: "Invalid group id"}
				}
			}
		}

		var err error
		if create {
			err = tx.Omit("Participants", "Groups").Create(e).Error
		} else {
			err = tx.Omit("Participants", "Groups").Save(e).Error
		}
		if err != nil {
			return err
		}
		if req.Participants != nil {
			if err := replaceAssociation(tx, e, "Participants", participants, len(participants)); err != nil {
				return err
			}
			e.Participants = participants
		}
		if req.Groups != nil {
			if err := replaceAssociation(tx, e, "Groups", groups, len(groups)); err != nil {
				return err
			}
			e.Groups = groups
		}
		return nil
	})
}

func (h *EventHandler) load(c *gin.Context) (*model.Event, bool) {
	id, valid := pathID(c, "id", "Event not found")
	if !valid {
		return nil, false
	}
	var e model.Event
	err := h.db.WithContext(c.Request.Context()).
		Preload("Participants").Preload("Groups").First(&e, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Event not found")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &e, true
}
