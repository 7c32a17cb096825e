package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubS3 swaps the AWS seams for the duration of a test.
func stubS3(t *testing.T, put func(in *s3.PutObjectInput) error, presign func(in *s3.GetObjectInput) (string, error)) {
	t.Helper()

	origLoad, origPut, origPresign := loadDefaultAWSConfig, putObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, putObject, presignGetObject = origLoad, origPut, origPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		if err := put(in); err != nil {
			return nil, err
		}
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		url, err := presign(in)
		if err != nil {
			return nil, err
		}
		return &v4.PresignedHTTPRequest{URL: url, Method: "GET"}, nil
	}
}

func newExportService(t *testing.T, bucket string) (*ExportService, *TaskService) {
	t.Helper()
	tasks, _ := newTaskService(t)
	cfg := &config.Config{S3Bucket: bucket, S3Region: "us-east-1", S3BaseEndpoint: "http://127.0.0.1:9000"}
	s := NewExportService(tasks, cfg, logging.NewNopLogger())
	s.now = func() time.Time { return fixedNow }
	return s, tasks
}

func TestExport_Disabled(t *testing.T) {
	s, _ := newExportService(t, "")
	assert.False(t, s.Enabled())

	_, err := s.Export(context.Background(), models.Authenticated(1))
	require.ErrorIs(t, err, ErrExportDisabled)
}

func TestExport_UploadsOwnTasksAndPresigns(t *testing.T) {
	s, tasks := newExportService(t, "exports-bucket")
	alice := models.Authenticated(1)
	_, err := tasks.Create(context.Background(), alice, TaskInput{Title: "mine"})
	require.NoError(t, err)
	_, err = tasks.Create(context.Background(), models.Authenticated(2), TaskInput{Title: "not mine"})
	require.NoError(t, err)

	var uploadedKey string
	var doc exportDocument
	stubS3(t,
		func(in *s3.PutObjectInput) error {
			assert.Equal(t, "exports-bucket", aws.ToString(in.Bucket))
			assert.Equal(t, "application/json", aws.ToString(in.ContentType))
			uploadedKey = aws.ToString(in.Key)
			b, err := io.ReadAll(in.Body)
			require.NoError(t, err)
			return json.Unmarshal(b, &doc)
		},
		func(in *s3.GetObjectInput) (string, error) {
			assert.Equal(t, uploadedKey, aws.ToString(in.Key))
			return "https://s3.example/" + aws.ToString(in.Key) + "?X-Amz-Signature=abc", nil
		},
	)

	url, err := s.Export(context.Background(), alice)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^exports/1/2025/06/01/[0-9a-f-]{36}\.json$`), uploadedKey)
	assert.Contains(t, url, uploadedKey)
	assert.Equal(t, int64(1), doc.UserID)
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "mine", doc.Tasks[0].Title)
}

func TestExport_Errors(t *testing.T) {
	s, _ := newExportService(t, "b")

	_, err := s.Export(context.Background(), models.Anonymous())
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	stubS3(t,
		func(*s3.PutObjectInput) error { return errors.New("bucket missing") },
		func(*s3.GetObjectInput) (string, error) { return "", nil },
	)
	_, err = s.Export(context.Background(), models.Authenticated(1))
	require.ErrorIs(t, err, common.ErrorStorage)

	stubS3(t,
		func(*s3.PutObjectInput) error { return nil },
		func(*s3.GetObjectInput) (string, error) { return "", errors.New("presign failed") },
	)
	_, err = s.Export(context.Background(), models.Authenticated(1))
	require.ErrorIs(t, err, common.ErrorStorage)
}

func TestExportKey(t *testing.T) {
	k1 := ExportKey(7, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))
	k2 := ExportKey(7, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, `^exports/7/2024/02/03/`, k1)
	assert.NotEqual(t, k1, k2)
}
