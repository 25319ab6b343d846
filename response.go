package main

import (
	"vidtube/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// apiResponse is the uniform success envelope.
type apiResponse struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, apiResponse{Status: status, Data: data, Message: message})
}

// respondErr classifies err and writes the error envelope. The underlying
// cause is only logged, never sent to the client.
func (a *app) respondErr(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		a.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"status": status, "error": apperr.Message(err)})
}

func (a *app) abortErr(c *gin.Context, err error) {
	a.respondErr(c, err)
	c.Abort()
}
