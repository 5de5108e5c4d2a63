package studiohttp

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imagestudio/server/internal/domain/studio"
	"github.com/imagestudio/server/internal/imaging"
	apperrors "github.com/imagestudio/server/internal/shared/errors"
	"github.com/imagestudio/server/internal/shared/response"
)

// errorMappings covers the sentinels that carry no per-request detail.
var errorMappings = []response.ErrorMapping{
	{Err: studio.ErrModelUnavailable, Status: http.StatusServiceUnavailable, Code: "MODEL_UNAVAILABLE",
		Message: "model endpoint unavailable, try again shortly"},
	{Err: studio.ErrUnknownTask, Status: http.StatusBadRequest, Code: "UNKNOWN_TASK"},
	{Err: imaging.ErrInvalidImage, Status: http.StatusBadRequest, Code: "INVALID_IMAGE",
		Message: "uploaded file is not a valid PNG or JPEG image"},
}

// handleError writes the response for a failed generation.
func (h *Handler) handleError(c *gin.Context, err error) {
	response.FromError(c, translate(err), errorMappings)
}

// translate lifts domain failures into the shared application error
// taxonomy so the response layer maps them all the same way.
func translate(err error) error {
	var vErr *studio.ValidationError
	if stderrors.As(err, &vErr) {
		return apperrors.Validation(vErr.Error(), err)
	}

	var mErr *studio.ModelError
	if stderrors.As(err, &mErr) {
		return apperrors.ModelFailure(mErr.Error(), err)
	}

	switch {
	case stderrors.Is(err, studio.ErrNoImages):
		return apperrors.ContentFiltered("", err)
	case stderrors.Is(err, studio.ErrInvalidRequest):
		return apperrors.Validation(err.Error(), err)
	}
	return err
}

// badRequest rejects a request that failed binding, before any domain
// validation runs.
func badRequest(c *gin.Context, message string) {
	response.FromError(c, apperrors.BadRequest(message), nil)
}
