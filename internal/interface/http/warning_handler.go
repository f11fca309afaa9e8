package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/roadwatch/warning-service/internal/application"
	"github.com/roadwatch/warning-service/internal/domain/entity"
	"github.com/roadwatch/warning-service/internal/interface/middleware"
	"github.com/roadwatch/warning-service/pkg/response"
	"github.com/roadwatch/warning-service/pkg/timeutil"
)

// WarningHandler is the query dispatcher: it interprets a request payload,
// validates shape and domain constraints, and delegates to the warning
// store. It holds no mutable state and is re-entrant per request.
type WarningHandler struct {
	Svc    *application.WarningService
	Logger *logrus.Logger
}

func NewWarningHandler(svc *application.WarningService, logger *logrus.Logger) *WarningHandler {
	return &WarningHandler{Svc: svc, Logger: logger}
}

// warningRequest is the polymorphic POST body. A present query discriminator
// selects a read; otherwise the presence of id selects update over submit.
// Pointer fields distinguish absent from zero.
type warningRequest struct {
	Query string `json:"query"`

	// submission / update
	ID           *int64   `json:"id"`
	Nickname     string   `json:"nickname"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Sent         string   `json:"sent"`
	DangerType   string   `json:"dangertype"`
	AreaCode     *string  `json:"areacode"`
	PhoneNumber  *string  `json:"phonenumber"`
	UpdateReason *string  `json:"updatereason"`

	// query companions
	TimeStart     string   `json:"timestart"`
	TimeEnd       string   `json:"timeend"`
	UpLatitude    *float64 `json:"uplatitude"`
	DownLatitude  *float64 `json:"downlatitude"`
	UpLongitude   *float64 `json:"uplongitude"`
	DownLongitude *float64 `json:"downlongitude"`
}

// Get returns every stored warning; 204 when the store is empty.
func (h *WarningHandler) Get(c *gin.Context) {
	records, err := h.Svc.All(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("query all failed")
		response.InternalError(c, err)
		return
	}
	response.JSONArray(c, records)
}

// Post dispatches a warning request: query, update, or submission.
func (h *WarningHandler) Post(c *gin.Context) {
	var req warningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid json")
		return
	}

	if req.Query != "" {
		h.dispatchQuery(c, &req)
		return
	}
	h.dispatchWrite(c, &req)
}

func (h *WarningHandler) dispatchQuery(c *gin.Context, req *warningRequest) {
	ctx := c.Request.Context()

	var (
		records []entity.WarningRecord
		err     error
	)
	switch req.Query {
	case "user":
		if req.Nickname == "" {
			response.BadRequest(c, "nickname is required for a user query")
			return
		}
		records, err = h.Svc.ByReporter(ctx, req.Nickname)
	case "time":
		if req.TimeStart == "" || req.TimeEnd == "" {
			response.BadRequest(c, "timestart and timeend are required for a time query")
			return
		}
		var start, end int64
		if start, err = timeutil.ParseTimestamp(req.TimeStart); err != nil {
			response.BadRequest(c, "invalid timestart")
			return
		}
		if end, err = timeutil.ParseTimestamp(req.TimeEnd); err != nil {
			response.BadRequest(c, "invalid timeend")
			return
		}
		records, err = h.Svc.ByTimeRange(ctx, start, end)
	case "location":
		if req.UpLatitude == nil || req.DownLatitude == nil || req.UpLongitude == nil || req.DownLongitude == nil {
			response.BadRequest(c, "uplatitude, downlatitude, uplongitude and downlongitude are required for a location query")
			return
		}
		records, err = h.Svc.ByBoundingBox(ctx, *req.UpLatitude, *req.DownLatitude, *req.UpLongitude, *req.DownLongitude)
	default:
		response.BadRequest(c, "unknown query")
		return
	}

	if err != nil {
		h.Logger.WithError(err).WithField("query", req.Query).Error("query failed")
		response.InternalError(c, err)
		return
	}
	response.JSONArray(c, records)
}

func (h *WarningHandler) dispatchWrite(c *gin.Context, req *warningRequest) {
	username := c.GetString(middleware.UsernameKey)

	if req.Nickname == "" {
		response.BadRequest(c, "nickname is required")
		return
	}
	if req.Latitude == nil || *req.Latitude < -90 || *req.Latitude > 90 {
		response.BadRequest(c, "latitude must be a number in [-90,90]")
		return
	}
	if req.Longitude == nil || *req.Longitude < -180 || *req.Longitude > 180 {
		response.BadRequest(c, "longitude must be a number in [-180,180]")
		return
	}

	// All validation happens before any storage call; an invalid field never
	// leaves a partial write behind.
	dangerType, err := entity.ParseDangerType(req.DangerType)
	if err != nil {
		response.BadRequest(c, "dangertype must be one of Deer, Reindeer, Moose, Other")
		return
	}
	sent, err := timeutil.ParseTimestamp(req.Sent)
	if err != nil {
		response.BadRequest(c, "invalid sent timestamp")
		return
	}

	input := application.SubmitInput{
		Nickname:    req.Nickname,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Sent:        sent,
		DangerType:  dangerType,
		AreaCode:    req.AreaCode,
		PhoneNumber: req.PhoneNumber,
	}

	if req.ID != nil {
		if req.UpdateReason == nil || *req.UpdateReason == "" {
			response.BadRequest(c, "updatereason is required when updating")
			return
		}
		err := h.Svc.Update(c.Request.Context(), application.UpdateInput{
			SubmitInput:  input,
			ID:           *req.ID,
			UpdateReason: *req.UpdateReason,
		}, username)
		switch {
		case errors.Is(err, application.ErrNotOwner):
			response.Forbidden(c, "not the original reporter")
		case err != nil:
			h.Logger.WithError(err).WithField("id", *req.ID).Error("update failed")
			response.InternalError(c, err)
		default:
			response.OK(c)
		}
		return
	}

	id, err := h.Svc.Submit(c.Request.Context(), input, username)
	if err != nil {
		h.Logger.WithError(err).Error("submit failed")
		response.InternalError(c, err)
		return
	}
	h.Logger.WithField("id", id).Debug("submission accepted")
	response.OK(c)
}
