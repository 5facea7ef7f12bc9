package servehttp

import (
	"net/http"
	"strconv"
	"taxflow/domain/progress"
	"taxflow/domain/stage"
	"taxflow/misc"
	"taxflow/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterReportHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	// report aggregation scans history across records; throttle it so it
	// cannot crowd out transition traffic
	limiter := rate.NewLimiter(rate.Limit(2), 4)
	wares := append([]gin.HandlerFunc{RateLimit(limiter)}, middleWares...)
	g := r.Group("/v1/reports", wares...)

	handler := &reportHandler{}
	g.GET("bottlenecks", handler.handleBottlenecks)
}

func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, &misc.ErrorBody{Code: "common.too_many_requests", Message: "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

type reportHandler struct {
}

func (h *reportHandler) handleBottlenecks(c *gin.Context) {
	workflowType := stage.WorkflowType(c.Query("workflowType"))
	if !stage.Known(workflowType) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "unknown workflow type '" + c.Query("workflowType") + "'"})
		return
	}

	thresholds := progress.DefaultThresholds()
	if v := c.Query("mildDays"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			thresholds.MildDays = parsed
		}
	}
	if v := c.Query("severeDays"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			thresholds.SevereDays = parsed
		}
	}

	bottlenecks, err := progress.BottlenecksFunc(workflowType, thresholds, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, bottlenecks)
}
