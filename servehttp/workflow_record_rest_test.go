package servehttp_test

import (
	"fmt"
	"net/http"
	"strings"
	"taxflow/bizerror"
	"taxflow/domain"
	"taxflow/domain/assignment"
	"taxflow/domain/flow"
	"taxflow/domain/history"
	"taxflow/domain/progress"
	"taxflow/domain/stage"
	"taxflow/servehttp"
	"taxflow/session"
	"taxflow/testinfra"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var demoTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

const demoTimeJSON = `"2024-05-01T10:00:00Z"`

func buildDemoRecord() *domain.WorkflowRecord {
	return &domain.WorkflowRecord{
		ID: 123, FilingPeriodID: 10, ClientID: 100, Type: stage.VATQuarter, RegistryVer: 1,
		CurrentStage: stage.WorkInProgress, AssignedUserID: 20, CreateTime: demoTime, Version: 3,
	}
}

func recordJSON(record *domain.WorkflowRecord) string {
	return fmt.Sprintf(`{
		"id": "%v", "filingPeriodId": "%v", "clientId": "%v", "type": "%s", "registryVersion": %d,
		"currentStage": "%s", "isCompleted": %v, "completedAt": null, "assignedUserId": "%v",
		"createTime": %s, "version": %d}`,
		record.ID, record.FilingPeriodID, record.ClientID, record.Type, record.RegistryVer,
		record.CurrentStage, record.IsCompleted, record.AssignedUserID, demoTimeJSON, record.Version)
}

func TestCreateWorkflowRecordAPI(t *testing.T) {
	RegisterTestingT(t)
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterWorkflowRecordHandler(router)

	t.Run("should create a workflow record", func(t *testing.T) {
		record := buildDemoRecord()
		record.CurrentStage = stage.PaperworkPendingChase
		record.Version = 1
		flow.CreateWorkflowRecordFunc = func(c *domain.WorkflowRecordCreation, s *session.Session) (*domain.WorkflowRecord, error) {
			Expect(c.FilingPeriodID).To(Equal(types.ID(10)))
			Expect(c.Type).To(Equal(stage.VATQuarter))
			return record, nil
		}

		req := httpRequest(t, http.MethodPost, "/v1/workflow-records", `{"filingPeriodId": "10", "type": "VAT_QUARTER"}`)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(recordJSON(record)))
	})

	t.Run("should reject invalid request bodies", func(t *testing.T) {
		req := httpRequest(t, http.MethodPost, "/v1/workflow-records", `{}`)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(strings.Contains(body, `"code":"common.bad_param"`)).To(BeTrue())
	})

	t.Run("should surface duplicated records as bad param", func(t *testing.T) {
		flow.CreateWorkflowRecordFunc = func(c *domain.WorkflowRecordCreation, s *session.Session) (*domain.WorkflowRecord, error) {
			return nil, &bizerror.ErrBadParam{Cause: fmt.Errorf("workflow record already exists for filing period %v", c.FilingPeriodID)}
		}

		req := httpRequest(t, http.MethodPost, "/v1/workflow-records", `{"filingPeriodId": "10", "type": "VAT_QUARTER"}`)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "common.bad_param",
			"message": "workflow record already exists for filing period 10", "data": null}`))
	})
}

func TestDetailWorkflowRecordAPI(t *testing.T) {
	RegisterTestingT(t)
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterWorkflowRecordHandler(router)

	t.Run("should return the record", func(t *testing.T) {
		record := buildDemoRecord()
		flow.DetailWorkflowRecordFunc = func(id types.ID, s *session.Session) (*domain.WorkflowRecord, error) {
			Expect(id).To(Equal(types.ID(123)))
			return record, nil
		}

		req := httpRequest(t, http.MethodGet, "/v1/workflow-records/123", "")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(recordJSON(record)))
	})

	t.Run("should reject a malformed id", func(t *testing.T) {
		req := httpRequest(t, http.MethodGet, "/v1/workflow-records/abc", "")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "common.bad_param", "message": "invalid id 'abc'", "data": null}`))
	})
}

func TestCreateTransitionAPI(t *testing.T) {
	RegisterTestingT(t)
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterWorkflowRecordHandler(router)

	t.Run("should apply the transition", func(t *testing.T) {
		record := buildDemoRecord()
		flow.TransitionFunc = func(id types.ID, c *domain.TransitionCreation, s *session.Session) (*domain.WorkflowRecord, error) {
			Expect(id).To(Equal(types.ID(123)))
			Expect(c.TargetStage).To(Equal(stage.WorkInProgress))
			Expect(c.Note).To(Equal("paperwork complete"))
			return record, nil
		}

		req := httpRequest(t, http.MethodPost, "/v1/workflow-records/123/transitions",
			`{"targetStage": "WORK_IN_PROGRESS", "note": "paperwork complete"}`)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(recordJSON(record)))
	})

	t.Run("completed records should yield a conflict", func(t *testing.T) {
		flow.TransitionFunc = func(id types.ID, c *domain.TransitionCreation, s *session.Session) (*domain.WorkflowRecord, error) {
			return nil, bizerror.ErrWorkflowLocked
		}

		req := httpRequest(t, http.MethodPost, "/v1/workflow-records/123/transitions", `{"targetStage": "WORK_IN_PROGRESS"}`)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code": "workflow.locked",
			"message": "workflow record is completed and locked", "data": null}`))
	})

	t.Run("unselectable stages should yield a bad request", func(t *testing.T) {
		flow.TransitionFunc = func(id types.ID, c *domain.TransitionCreation, s *session.Session) (*domain.WorkflowRecord, error) {
			return nil, bizerror.ErrInvalidStage
		}

		req := httpRequest(t, http.MethodPost, "/v1/workflow-records/123/transitions", `{"targetStage": "CLIENT_SELF_FILING"}`)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "workflow.invalid_stage",
			"message": "stage is not selectable for this workflow type", "data": null}`))
	})

	t.Run("concurrent modification should yield a conflict", func(t *testing.T) {
		flow.TransitionFunc = func(id types.ID, c *domain.TransitionCreation, s *session.Session) (*domain.WorkflowRecord, error) {
			return nil, bizerror.ErrStaleVersion
		}

		req := httpRequest(t, http.MethodPost, "/v1/workflow-records/123/transitions", `{"targetStage": "WORK_IN_PROGRESS"}`)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code": "workflow.stale_version",
			"message": "workflow record has been modified concurrently", "data": null}`))
	})
}

func TestSelfFilingExitAPI(t *testing.T) {
	RegisterTestingT(t)
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterWorkflowRecordHandler(router)

	t.Run("should close the record, body optional", func(t *testing.T) {
		record := buildDemoRecord()
		record.CurrentStage = stage.ClientSelfFiling
		record.IsCompleted = true
		flow.SelfFilingExitFunc = func(id types.ID, note string, s *session.Session) (*domain.WorkflowRecord, error) {
			Expect(id).To(Equal(types.ID(123)))
			Expect(note).To(BeEmpty())
			return record, nil
		}

		req := httpRequest(t, http.MethodPost, "/v1/workflow-records/123/self-filing-exit", "")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(recordJSON(record)))
	})

	t.Run("should pass a custom note through", func(t *testing.T) {
		record := buildDemoRecord()
		flow.SelfFilingExitFunc = func(id types.ID, note string, s *session.Session) (*domain.WorkflowRecord, error) {
			Expect(note).To(Equal("client filing via agent portal"))
			return record, nil
		}

		req := httpRequest(t, http.MethodPost, "/v1/workflow-records/123/self-filing-exit",
			`{"note": "client filing via agent portal"}`)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
	})
}

func TestQueryHistoryAPI(t *testing.T) {
	RegisterTestingT(t)
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterWorkflowRecordHandler(router)

	days := 4
	entries := []domain.WorkflowHistoryEntry{
		{ID: 1, RecordID: 123, ToStage: stage.PaperworkPendingChase, ChangedAt: demoTime, ActorID: 10, ActorName: "ann", ActorRole: "manager"},
		{ID: 2, RecordID: 123, FromStage: stage.PaperworkPendingChase, ToStage: stage.PaperworkReceived,
			ChangedAt: demoTime, ActorID: 10, ActorName: "ann", ActorRole: "manager", DaysInPreviousStage: &days, Note: "dropped off in person"},
	}
	entriesJSON := fmt.Sprintf(`[
		{"id": "1", "recordId": "123", "fromStage": "", "toStage": "PAPERWORK_PENDING_CHASE", "changedAt": %[1]s,
		 "actorId": "10", "actorName": "ann", "actorRole": "manager", "daysInPreviousStage": null, "note": ""},
		{"id": "2", "recordId": "123", "fromStage": "PAPERWORK_PENDING_CHASE", "toStage": "PAPERWORK_RECEIVED", "changedAt": %[1]s,
		 "actorId": "10", "actorName": "ann", "actorRole": "manager", "daysInPreviousStage": 4, "note": "dropped off in person"}]`, demoTimeJSON)

	t.Run("should list the ledger oldest-first by default", func(t *testing.T) {
		history.ListForFunc = func(id types.ID, s *session.Session) ([]domain.WorkflowHistoryEntry, error) {
			Expect(id).To(Equal(types.ID(123)))
			return entries, nil
		}

		req := httpRequest(t, http.MethodGet, "/v1/workflow-records/123/history", "")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(entriesJSON))
	})

	t.Run("order=desc should flip to newest-first", func(t *testing.T) {
		history.ListForDescFunc = func(id types.ID, s *session.Session) ([]domain.WorkflowHistoryEntry, error) {
			reversed := []domain.WorkflowHistoryEntry{entries[1], entries[0]}
			return reversed, nil
		}

		req := httpRequest(t, http.MethodGet, "/v1/workflow-records/123/history?order=desc", "")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(strings.Index(body, `"id":"2"`) < strings.Index(body, `"id":"1"`)).To(BeTrue())
	})
}

func TestQueryMilestonesAPI(t *testing.T) {
	RegisterTestingT(t)
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterWorkflowRecordHandler(router)

	t.Run("should list milestones in stamping order", func(t *testing.T) {
		flow.ListMilestonesFunc = func(id types.ID, s *session.Session) ([]domain.WorkflowMilestone, error) {
			Expect(id).To(Equal(types.ID(123)))
			return []domain.WorkflowMilestone{
				{ID: 1, RecordID: 123, Stage: stage.PaperworkPendingChase, Timestamp: demoTime, ActorID: 10, ActorName: "ann"},
			}, nil
		}

		req := httpRequest(t, http.MethodGet, "/v1/workflow-records/123/milestones", "")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(fmt.Sprintf(`[{"id": "1", "recordId": "123", "stage": "PAPERWORK_PENDING_CHASE",
			"timestamp": %s, "actorId": "10", "actorName": "ann"}]`, demoTimeJSON)))
	})
}

func TestProgressSummaryAPI(t *testing.T) {
	RegisterTestingT(t)
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterWorkflowRecordHandler(router)

	t.Run("should render the derived progress view", func(t *testing.T) {
		progress.SummaryFunc = func(id types.ID, s *session.Session) (*progress.ProgressSummary, error) {
			return &progress.ProgressSummary{
				RecordID: 123, CurrentStage: stage.WorkInProgress, ProgressPercentage: 33, TotalElapsedDays: 12,
				StageDurations: []progress.StageDuration{{Stage: stage.PaperworkPendingChase, Days: 4}},
			}, nil
		}

		req := httpRequest(t, http.MethodGet, "/v1/workflow-records/123/progress", "")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"recordId": "123", "currentStage": "WORK_IN_PROGRESS", "isCompleted": false,
			"progressPercentage": 33, "totalElapsedDays": 12,
			"stageDurations": [{"stage": "PAPERWORK_PENDING_CHASE", "days": 4}]}`))
	})
}

func TestUpdateAssigneeAPI(t *testing.T) {
	RegisterTestingT(t)
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterWorkflowRecordHandler(router)

	t.Run("should reassign the record", func(t *testing.T) {
		record := buildDemoRecord()
		record.AssignedUserID = 30
		assignment.ReassignFunc = func(recordID types.ID, userID types.ID, s *session.Session) (*domain.WorkflowRecord, error) {
			Expect(recordID).To(Equal(types.ID(123)))
			Expect(userID).To(Equal(types.ID(30)))
			return record, nil
		}

		req := httpRequest(t, http.MethodPut, "/v1/workflow-records/123/assignee", `{"userId": "30"}`)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(recordJSON(record)))
	})

	t.Run("unknown users should yield not found", func(t *testing.T) {
		assignment.ReassignFunc = func(recordID types.ID, userID types.ID, s *session.Session) (*domain.WorkflowRecord, error) {
			return nil, bizerror.ErrUserNotFound
		}

		req := httpRequest(t, http.MethodPut, "/v1/workflow-records/123/assignee", `{"userId": "999"}`)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code": "account.user_not_found", "message": "user not found", "data": null}`))
	})

	t.Run("inactive users should yield a bad request", func(t *testing.T) {
		assignment.ReassignFunc = func(recordID types.ID, userID types.ID, s *session.Session) (*domain.WorkflowRecord, error) {
			return nil, bizerror.ErrUserInactive
		}

		req := httpRequest(t, http.MethodPut, "/v1/workflow-records/123/assignee", `{"userId": "40"}`)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "account.user_inactive", "message": "user is inactive", "data": null}`))
	})
}

func httpRequest(t *testing.T, method, path, body string) *http.Request {
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, path, nil)
	} else {
		req, err = http.NewRequest(method, path, strings.NewReader(body))
	}
	if err != nil {
		t.Fatal(err)
	}
	return req
}
