package servehttp

import (
	"net/http"
	"taxflow/bizerror"
	"taxflow/domain"
	"taxflow/domain/deadline"
	"taxflow/domain/period"
	"taxflow/session"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterFilingPeriodHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/filing-periods", middleWares...)

	handler := &filingPeriodHandler{
		validator: validator.New(),
	}

	g.POST("", handler.handleCreateFilingPeriod)
	g.GET(":id", handler.handleDetailFilingPeriod)

	g.GET(":id/deadlines", handler.handleComputeDeadlines)
	g.PUT(":id/deadlines/:obligation", handler.handleSetManualOverride)
	g.DELETE(":id/deadlines/:obligation", handler.handleResetToAuto)
}

type filingPeriodHandler struct {
	validator *validator.Validate
}

type deadlineOverrideBody struct {
	DueDate time.Time `json:"dueDate" binding:"required" validate:"required"`
}

func (h *filingPeriodHandler) handleCreateFilingPeriod(c *gin.Context) {
	creation := domain.FilingPeriodCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	filingPeriod, err := period.CreateFilingPeriodFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, filingPeriod)
}

func (h *filingPeriodHandler) handleDetailFilingPeriod(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	filingPeriod, err := period.DetailFilingPeriodFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, filingPeriod)
}

func (h *filingPeriodHandler) handleComputeDeadlines(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	dueDates, err := period.ComputeDeadlinesFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, dueDates)
}

func (h *filingPeriodHandler) handleSetManualOverride(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	body := deadlineOverrideBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(body); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	obligation := deadline.Obligation(c.Param("obligation"))
	dueDate, err := period.SetManualOverrideFunc(id, obligation, body.DueDate, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, dueDate)
}

func (h *filingPeriodHandler) handleResetToAuto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	obligation := deadline.Obligation(c.Param("obligation"))
	dueDate, err := period.ResetToAutoFunc(id, obligation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, dueDate)
}
