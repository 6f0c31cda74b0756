package distrib

import (
	"context"
	"fmt"
	"strconv"

	"github.com/programme-lv/soltracker/s3bucket"
	"github.com/wailsapp/mimetype"
)

// S3Sink stores solution sources as objects keyed by task, author and
// solution id. Metadata travels in object headers.
type S3Sink struct {
	bucket *s3bucket.S3Bucket
}

func NewS3Sink(bucket *s3bucket.S3Bucket) *S3Sink {
	return &S3Sink{bucket: bucket}
}

func SolutionObjectKey(taskID string, authorID int64, solutionID int64) string {
	return fmt.Sprintf("solutions/%s/%d/%d", taskID, authorID, solutionID)
}

func (s *S3Sink) Put(ctx context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error {
	key := SolutionObjectKey(taskID, authorID, solutionID)
	mediaType := mimetype.Detect(content).String()

	_, err := s.bucket.Upload(ctx, content, key, mediaType, map[string]string{
		"task-id":     taskID,
		"solution-id": strconv.FormatInt(solutionID, 10),
		"author-id":   strconv.FormatInt(authorID, 10),
		"lang":        langName,
	})
	if err != nil {
		return fmt.Errorf("failed to store solution in s3: %w", err)
	}
	return nil
}
