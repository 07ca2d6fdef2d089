package handlers

import (
	"errors"
	"log"
	"net/http"

	"ecommerce-storefront/api-gateway/internal/auth"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func mapGrpcToHttpError(c *gin.Context, err error, requestInfo string) {
	st, ok := status.FromError(err)
	if !ok {
		log.Printf("API Gateway: Non-gRPC error processing request '%s': %v", requestInfo, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to communicate with downstream service"})
		return
	}

	httpStatus := http.StatusInternalServerError
	errMsg := st.Message()

	log.Printf("API Gateway: gRPC error processing request '%s': Code=%s, Msg=%s", requestInfo, st.Code(), errMsg)

	switch st.Code() {
	case codes.NotFound:
		httpStatus = http.StatusNotFound
	case codes.InvalidArgument:
		httpStatus = http.StatusBadRequest
	case codes.AlreadyExists:
		httpStatus = http.StatusConflict
	case codes.PermissionDenied:
		httpStatus = http.StatusForbidden
	case codes.Unauthenticated:
		httpStatus = http.StatusUnauthorized
	case codes.FailedPrecondition:
		httpStatus = http.StatusConflict
	case codes.Unimplemented:
		httpStatus = http.StatusNotImplemented
	case codes.Unavailable:
		httpStatus = http.StatusBadGateway
	case codes.DeadlineExceeded:
		httpStatus = http.StatusGatewayTimeout
	case codes.Internal:
		errMsg = "Internal server error in downstream service"
	default:
		errMsg = "An unexpected error occurred"
	}

	c.JSON(httpStatus, gin.H{"error": errMsg})
}

func mapAuthError(c *gin.Context, err error, requestInfo string) {
	httpStatus := http.StatusInternalServerError
	errMsg := "Authentication service error"

	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		httpStatus, errMsg = http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrEmailTaken):
		httpStatus, errMsg = http.StatusConflict, auth.ErrEmailTaken.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		httpStatus, errMsg = http.StatusUnauthorized, auth.ErrInvalidCredentials.Error()
	case errors.Is(err, auth.ErrInvalidToken):
		httpStatus, errMsg = http.StatusUnauthorized, auth.ErrInvalidToken.Error()
	case errors.Is(err, auth.ErrUserNotFound):
		httpStatus, errMsg = http.StatusNotFound, auth.ErrUserNotFound.Error()
	}

	log.Printf("API Gateway: auth error processing request '%s': %v", requestInfo, err)
	c.AbortWithStatusJSON(httpStatus, gin.H{"error": errMsg})
}
