package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"taxflow/i18n"
	"taxflow/misc"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &misc.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body).
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	if errors.Is(genericErr, ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, &misc.ErrorBody{Code: i18n.CommonUnauthenticated, Message: "unauthenticated"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrForbidden) {
		c.JSON(http.StatusForbidden, &misc.ErrorBody{Code: i18n.SecurityForbidden, Message: "access forbidden"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrWorkflowLocked) {
		c.JSON(http.StatusConflict, &misc.ErrorBody{Code: i18n.WorkflowLocked, Message: "workflow record is completed and locked"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrInvalidStage) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: i18n.WorkflowInvalidStage, Message: "stage is not selectable for this workflow type"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrStaleVersion) {
		c.JSON(http.StatusConflict, &misc.ErrorBody{Code: i18n.WorkflowStaleVersion, Message: "workflow record has been modified concurrently"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrUserNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: i18n.AccountUserNotFound, Message: "user not found"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrUserInactive) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: i18n.AccountUserInactive, Message: "user is inactive"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrInsufficientData) {
		c.JSON(http.StatusUnprocessableEntity, &misc.ErrorBody{Code: i18n.DeadlineInsufficientData, Message: "insufficient data to compute due date"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrInvalidObligation) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: i18n.DeadlineInvalidObligation, Message: "obligation does not apply to this filing period"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: i18n.CommonRecordNotFound, Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &misc.ErrorBody{Code: i18n.CommonInternalServerError, Message: err.Error()})
	c.Abort()
}
