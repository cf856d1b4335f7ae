package intake

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/lectorium/lectorium/internal/assign"
	"github.com/lectorium/lectorium/internal/identity"
	"github.com/lectorium/lectorium/internal/services"
	"github.com/lectorium/lectorium/pkg/logger"
)

// defaultPrefix is the object-path namespace delivered by the storage
// collaborator for finalized document uploads.
const defaultPrefix = "uploads/"

// UploadEvent is one finalized-upload delivery from the storage collaborator.
// Delivery is at least once; repeated deliveries of the same object each
// create a fresh submission (no idempotency key is available today).
type UploadEvent struct {
	ObjectPath  string `json:"object_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Intake turns upload events into submissions: it parses the object path,
// asks the assigner for a reviewer, and hands the result to the workflow.
type Intake struct {
	assigner    *assign.Assigner
	identities  identity.Provider
	submissions *services.SubmissionService
	prefix      string
	log         *zap.Logger
}

// Option customises the Intake.
type Option func(*Intake)

// WithPrefix overrides the watched object-path namespace.
func WithPrefix(prefix string) Option {
	return func(i *Intake) {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			return
		}
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		i.prefix = prefix
	}
}

// New constructs an Intake.
func New(assigner *assign.Assigner, identities identity.Provider, submissions *services.SubmissionService, opts ...Option) (*Intake, error) {
	if assigner == nil {
		return nil, errors.New("intake: assigner is required")
	}
	if identities == nil {
		return nil, errors.New("intake: identity provider is required")
	}
	if submissions == nil {
		return nil, errors.New("intake: submission service is required")
	}
	in := &Intake{
		assigner:    assigner,
		identities:  identities,
		submissions: submissions,
		prefix:      defaultPrefix,
		log:         logger.WithModule("intake"),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in, nil
}

// HandleUploadEvent processes one finalized upload. Events whose object path
// does not match uploads/<owner>/<file> are expected noise from the shared
// bucket and are discarded without error.
func (i *Intake) HandleUploadEvent(ctx context.Context, event UploadEvent) (*services.SubmissionDTO, error) {
	ownerID, fileName, ok := parseObjectPath(event.ObjectPath, i.prefix)
	if !ok {
		i.log.Debug("discarding upload event with unrecognised object path",
			zap.String("object_path", event.ObjectPath),
		)
		return nil, nil
	}

	var reviewerID *string
	pool, err := i.identities.ListIdentities(ctx)
	if err != nil {
		// Assignment is best effort; the submission is still recorded and a
		// reviewer can be picked up on a later pass.
		i.log.Warn("identity lookup failed; creating submission unassigned",
			zap.String("object_path", event.ObjectPath),
			zap.Error(err),
		)
	} else if picked, found := i.assigner.Assign(ownerID, pool); found {
		reviewerID = &picked
	}

	submission, err := i.submissions.Create(ctx, services.CreateSubmissionInput{
		FileName:    fileName,
		FilePath:    event.ObjectPath,
		ContentType: event.ContentType,
		Size:        event.Size,
		UploaderID:  ownerID,
		ReviewerID:  reviewerID,
	})
	if err != nil {
		return nil, err
	}

	i.log.Info("submission created from upload",
		zap.String("submission_id", submission.ID),
		zap.String("uploader_id", ownerID),
		zap.Bool("assigned", reviewerID != nil),
	)
	return submission, nil
}

// parseObjectPath splits <prefix><ownerId>/<fileName>. The owner occupies a
// single path segment; everything after it, slashes included, is the file name.
func parseObjectPath(objectPath, prefix string) (ownerID, fileName string, ok bool) {
	if !strings.HasPrefix(objectPath, prefix) {
		return "", "", false
	}

	rest := objectPath[len(prefix):]
	slash := strings.Index(rest, "/")
	if slash <= 0 {
		return "", "", false
	}

	ownerID = rest[:slash]
	fileName = rest[slash+1:]
	if fileName == "" {
		return "", "", false
	}

	return ownerID, fileName, true
}
