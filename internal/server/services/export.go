package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/google/uuid"
)

// ErrExportDisabled is returned when no bucket is configured.
var ErrExportDisabled = errors.New("task export is not configured")

const exportURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// taskLister is the part of TaskService export reads from.
type taskLister interface {
	List(ctx context.Context, id models.Identity, filter models.Filter, order models.Sort) ([]*models.Task, error)
}

type exportDocument struct {
	UserID     int64          `json:"user_id"`
	ExportedAt time.Time      `json:"exported_at"`
	Tasks      []*models.Task `json:"tasks"`
}

// ExportService writes a user's task list to object storage and hands back
// a short-lived download link.
type ExportService struct {
	tasks  taskLister
	config *config.Config
	log    logging.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(tasks taskLister, cfg *config.Config, l logging.Logger) *ExportService {
	return &ExportService{tasks: tasks, config: cfg, log: l.With("module", "export"), now: time.Now}
}

// Enabled reports whether a bucket is configured.
func (s *ExportService) Enabled() bool {
	return s.config.ExportEnabled()
}

// ExportKey builds the object key for an export made at t.
func ExportKey(userID int64, t time.Time) string {
	return fmt.Sprintf("exports/%d/%04d/%02d/%02d/%s.json", userID, t.Year(), t.Month(), t.Day(), uuid.New())
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Export uploads the owner's full task list as JSON and returns a presigned
// GET URL valid for 15 minutes.
func (s *ExportService) Export(ctx context.Context, id models.Identity) (string, error) {
	if !s.Enabled() {
		return "", ErrExportDisabled
	}

	list, err := s.tasks.List(ctx, id, models.FilterAll, models.SortCreated)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	body, err := json.Marshal(exportDocument{UserID: id.UserID(), ExportedAt: now, Tasks: list})
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return "", common.StorageError(err)
	}

	bucket := s.config.S3Bucket
	key := ExportKey(id.UserID(), now)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return "", common.StorageError(err)
	}

	req, err := presignGetObject(s3.NewPresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(exportURLValidity))
	if err != nil {
		return "", common.StorageError(err)
	}

	s.log.Info(ctx, "tasks exported", "user_id", id.UserID(), "key", key, "count", len(list))
	return req.URL, nil
}
