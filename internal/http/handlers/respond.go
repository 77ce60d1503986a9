package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The storefront's legacy wire contract: failures carry success:false and a
// string (or structured) errors field rather than an error envelope.

func RespondErrors(ctx *gin.Context, status int, errs interface{}) {
	ctx.JSON(status, gin.H{
		"success": false,
		"errors":  errs,
	})
}

func RespondBadRequest(ctx *gin.Context, errs interface{}) {
	RespondErrors(ctx, http.StatusBadRequest, errs)
}

func RespondUnauthorized(ctx *gin.Context, errs interface{}) {
	RespondErrors(ctx, http.StatusUnauthorized, errs)
}

func RespondInternal(ctx *gin.Context) {
	RespondErrors(ctx, http.StatusInternalServerError, "Internal Server Error")
}
