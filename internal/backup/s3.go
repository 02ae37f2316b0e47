package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// multipartThreshold is the file size above which uploads switch to the
// multipart API. Parts are the same size.
const multipartThreshold = int64(100 * 1024 * 1024)

// S3Client wraps S3 operations for backup archives.
type S3Client struct {
	client *s3.Client
	bucket string
}

// NewS3Client creates a client for the given bucket.
func NewS3Client(ctx context.Context, bucket string) (*S3Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Client{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// UploadFile uploads a file to S3, switching to multipart for large files.
func (s *S3Client) UploadFile(ctx context.Context, key string, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}

	if fileInfo.Size() > multipartThreshold {
		return s.uploadMultipart(ctx, key, file, fileInfo.Size())
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file %s to s3://%s/%s: %w", filePath, s.bucket, key, err)
	}

	return nil
}

// uploadMultipart handles multipart uploads for large archives, aborting
// the upload on any part failure so no orphan parts accrue charges.
func (s *S3Client) uploadMultipart(ctx context.Context, key string, file *os.File, size int64) error {
	createResult, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to create multipart upload: %w", err)
	}

	uploadID := createResult.UploadId
	abort := func() {
		s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(s.bucket),
			Key:      aws.String(key),
			UploadId: uploadID,
		})
	}

	partSize := multipartThreshold
	var completedParts []types.CompletedPart
	partNumber := int32(1)

	for offset := int64(0); offset < size; offset += partSize {
		end := offset + partSize
		if end > size {
			end = size
		}

		buffer := make([]byte, end-offset)
		n, readErr := file.ReadAt(buffer, offset)
		if readErr != nil && readErr != io.EOF {
			abort()
			return fmt.Errorf("failed to read file part: %w", readErr)
		}

		uploadResult, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:     aws.String(s.bucket),
			Key:        aws.String(key),
			PartNumber: aws.Int32(partNumber),
			UploadId:   uploadID,
			Body:       bytes.NewReader(buffer[:n]),
		})
		if err != nil {
			abort()
			return fmt.Errorf("failed to upload part %d: %w", partNumber, err)
		}

		completedParts = append(completedParts, types.CompletedPart{
			ETag:       uploadResult.ETag,
			PartNumber: aws.Int32(partNumber),
		})
		partNumber++
	}

	_, err = s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		UploadId: uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completedParts,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	return nil
}

// DownloadFile downloads a single object to a local path, creating parent
// directories as needed.
func (s *S3Client) DownloadFile(ctx context.Context, key string, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}
	defer result.Body.Close()

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, result.Body); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	return nil
}

// ListObjects lists all object keys under a prefix.
func (s *S3Client) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var continuationToken *string

	for {
		result, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range result.Contents {
			keys = append(keys, *obj.Key)
		}

		if result.IsTruncated == nil || !*result.IsTruncated {
			break
		}
		continuationToken = result.NextContinuationToken
	}

	return keys, nil
}

// UploadDirectory uploads every file under localDir to S3 below s3Prefix.
func (s *S3Client) UploadDirectory(ctx context.Context, localDir string, s3Prefix string) error {
	return filepath.Walk(localDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(localDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		s3Key := s3Prefix + "/" + strings.ReplaceAll(relPath, string(filepath.Separator), "/")
		if err := s.UploadFile(ctx, s3Key, path); err != nil {
			return fmt.Errorf("failed to upload %s: %w", path, err)
		}
		return nil
	})
}

// DownloadDirectory mirrors every object under s3Prefix into localDir.
func (s *S3Client) DownloadDirectory(ctx context.Context, s3Prefix string, localDir string) error {
	keys, err := s.ListObjects(ctx, s3Prefix)
	if err != nil {
		return fmt.Errorf("failed to list S3 objects: %w", err)
	}

	for _, key := range keys {
		if strings.HasSuffix(key, "/") {
			continue
		}

		relKey := strings.TrimPrefix(key, s3Prefix+"/")
		localPath := filepath.Join(localDir, relKey)
		if err := s.DownloadFile(ctx, key, localPath); err != nil {
			return fmt.Errorf("failed to download %s: %w", key, err)
		}
	}

	return nil
}
