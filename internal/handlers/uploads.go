package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lectorium/lectorium/internal/intake"
	"github.com/lectorium/lectorium/pkg/errors"
	"github.com/lectorium/lectorium/pkg/response"
)

// UploadHandler receives finalized-upload events from the storage collaborator.
type UploadHandler struct {
	intake *intake.Intake
}

// NewUploadHandler constructs an upload event handler.
func NewUploadHandler(in *intake.Intake) (*UploadHandler, error) {
	if in == nil {
		return nil, stderrors.New("upload handler: intake is required")
	}
	return &UploadHandler{intake: in}, nil
}

// Event handles one upload-finalize delivery. Events with unrecognised
// object paths are acknowledged and dropped so the source does not redeliver
// noise forever.
func (h *UploadHandler) Event(c *gin.Context) {
	var event intake.UploadEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, errors.NewBadRequest("invalid event body"))
		return
	}

	submission, err := h.intake.HandleUploadEvent(requestContext(c), event)
	if err != nil {
		response.Error(c, err)
		return
	}

	if submission == nil {
		response.Success(c, http.StatusAccepted, gin.H{"discarded": true})
		return
	}

	response.Success(c, http.StatusAccepted, submission)
}
