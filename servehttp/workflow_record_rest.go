package servehttp

import (
	"net/http"
	"taxflow/bizerror"
	"taxflow/domain"
	"taxflow/domain/assignment"
	"taxflow/domain/flow"
	"taxflow/domain/history"
	"taxflow/domain/progress"
	"taxflow/misc"
	"taxflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterWorkflowRecordHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/workflow-records", middleWares...)

	handler := &workflowRecordHandler{
		validator: validator.New(),
	}

	g.POST("", handler.handleCreateWorkflowRecord)
	g.GET(":id", handler.handleDetailWorkflowRecord)

	g.POST(":id/transitions", handler.handleCreateTransition)
	g.POST(":id/self-filing-exit", handler.handleSelfFilingExit)

	g.GET(":id/history", handler.handleQueryHistory)
	g.GET(":id/milestones", handler.handleQueryMilestones)
	g.GET(":id/progress", handler.handleProgressSummary)

	g.PUT(":id/assignee", handler.handleUpdateAssignee)
}

type workflowRecordHandler struct {
	validator *validator.Validate
}

type noteBody struct {
	Note string `json:"note"`
}

func (h *workflowRecordHandler) handleCreateWorkflowRecord(c *gin.Context) {
	creation := domain.WorkflowRecordCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := flow.CreateWorkflowRecordFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *workflowRecordHandler) handleDetailWorkflowRecord(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	record, err := flow.DetailWorkflowRecordFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *workflowRecordHandler) handleCreateTransition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	creation := domain.TransitionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := flow.TransitionFunc(id, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *workflowRecordHandler) handleSelfFilingExit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	body := noteBody{}
	// body is optional for the self-filing exit
	_ = c.ShouldBindBodyWith(&body, binding.JSON)

	record, err := flow.SelfFilingExitFunc(id, body.Note, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *workflowRecordHandler) handleQueryHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	s := session.ExtractSessionFromGinContext(c)

	var entries []domain.WorkflowHistoryEntry
	var err error
	if c.Query("order") == "desc" {
		entries, err = history.ListForDescFunc(id, s)
	} else {
		entries, err = history.ListForFunc(id, s)
	}
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *workflowRecordHandler) handleQueryMilestones(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	milestones, err := flow.ListMilestonesFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, milestones)
}

func (h *workflowRecordHandler) handleProgressSummary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	summary, err := progress.SummaryFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *workflowRecordHandler) handleUpdateAssignee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	updating := domain.AssigneeUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := assignment.ReassignFunc(id, updating.UserID, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, record)
}

func parseID(c *gin.Context) (types.ID, bool) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return 0, false
	}
	return id, true
}
