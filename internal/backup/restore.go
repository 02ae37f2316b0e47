package backup

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

// RestoreOptions configures restore behavior. The zero value of Overwrite
// uses conditional writes keyed on KeyAttribute, which skips rows the
// pipeline has written since the backup was taken.
type RestoreOptions struct {
	InputPath    string
	S3Bucket     string
	S3Prefix     string
	Tables       []string
	KeyAttribute string
	Overwrite    bool
	DryRun       bool
	ProgressFunc func(tableName string, itemsRestored int)
	Log          logrus.FieldLogger
}

// RestoreResult contains information about a completed restore.
type RestoreResult struct {
	TablesRestored int
	TotalItems     int
	ItemsSkipped   int
	Duration       time.Duration
	Errors         []string
}

// Restore loads a backup directory (local or downloaded from S3) back into
// DynamoDB. Table exports are checksum-verified against the manifest
// before any write happens; a table that fails verification is recorded
// in Errors and skipped.
func Restore(ctx context.Context, options RestoreOptions) (*RestoreResult, error) {
	log := ensureLogger(options.Log)
	startTime := time.Now()

	restorePath := options.InputPath
	if options.S3Bucket != "" {
		tempDir, err := os.MkdirTemp("", "creatorstats-restore-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer os.RemoveAll(tempDir)

		s3Client, err := NewS3Client(ctx, options.S3Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}

		log.Infof("downloading backup from s3://%s/%s", options.S3Bucket, options.S3Prefix)
		if err := s3Client.DownloadDirectory(ctx, options.S3Prefix, tempDir); err != nil {
			return nil, fmt.Errorf("failed to download from S3: %w", err)
		}

		restorePath, err = findBackupDir(tempDir)
		if err != nil {
			return nil, err
		}
	}

	manifest, err := ReadManifest(filepath.Join(restorePath, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	log.WithFields(logrus.Fields{
		"backupRunId": manifest.RunID,
		"createdAt":   manifest.BackupTimestamp,
	}).Infof("restoring backup from %s", restorePath)

	dbClient, err := NewDynamoDBClient(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}

	tablesToRestore := options.Tables
	if len(tablesToRestore) == 0 {
		for _, tm := range manifest.Tables {
			tablesToRestore = append(tablesToRestore, tm.TableName)
		}
	}

	keyAttr := options.KeyAttribute
	if keyAttr == "" {
		keyAttr = "asOfDate"
	}

	result := &RestoreResult{Errors: []string{}}

	for _, tableName := range tablesToRestore {
		tm := manifest.Table(tableName)
		if tm == nil {
			msg := fmt.Sprintf("table %s not found in backup manifest", tableName)
			result.Errors = append(result.Errors, msg)
			log.Warn(msg)
			continue
		}

		filePath := filepath.Join(restorePath, tm.FileName)
		if tm.Checksum != "" {
			sum, err := FileChecksum(filePath)
			if err != nil {
				msg := fmt.Sprintf("failed to checksum %s: %v", tm.FileName, err)
				result.Errors = append(result.Errors, msg)
				log.Error(msg)
				continue
			}
			if sum != tm.Checksum {
				msg := fmt.Sprintf("checksum mismatch for %s: backup is corrupt", tm.FileName)
				result.Errors = append(result.Errors, msg)
				log.Error(msg)
				continue
			}
		}

		items, err := readItemsJSONL(filePath)
		if err != nil {
			msg := fmt.Sprintf("failed to read items for table %s: %v", tableName, err)
			result.Errors = append(result.Errors, msg)
			log.Error(msg)
			continue
		}

		if options.DryRun {
			log.Infof("[dry run] would restore %d items to table %s", len(items), tableName)
			result.TotalItems += len(items)
			result.TablesRestored++
			continue
		}

		itemsRestored := 0
		progressFunc := func(count int) {
			itemsRestored += count
			if options.ProgressFunc != nil {
				options.ProgressFunc(tableName, itemsRestored)
			}
		}

		if options.Overwrite {
			if err := dbClient.BatchWriteItems(ctx, tableName, items, progressFunc); err != nil {
				msg := fmt.Sprintf("failed to restore items to table %s: %v", tableName, err)
				result.Errors = append(result.Errors, msg)
				log.Error(msg)
				continue
			}
			result.TotalItems += len(items)
		} else {
			written, skipped, err := dbClient.PutItemsIfAbsent(ctx, tableName, keyAttr, items, progressFunc)
			result.TotalItems += written
			result.ItemsSkipped += skipped
			if err != nil {
				msg := fmt.Sprintf("failed to restore items to table %s: %v", tableName, err)
				result.Errors = append(result.Errors, msg)
				log.Error(msg)
				continue
			}
		}

		result.TablesRestored++
		log.Infof("restored table %s", tableName)
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// findBackupDir locates the single backup-<timestamp> directory inside an
// S3 download.
func findBackupDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read temp directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("no backup directory found in S3 download")
}

// readItemsJSONL reads items from a JSONL file, transparently handling
// gzip compression.
func readItemsJSONL(filePath string) ([]map[string]types.AttributeValue, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var scanner *bufio.Scanner
	if strings.HasSuffix(filePath, ".gz") {
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		scanner = bufio.NewScanner(gzipReader)
	} else {
		scanner = bufio.NewScanner(file)
	}

	var items []map[string]types.AttributeValue
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		var plain map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &plain); err != nil {
			return nil, fmt.Errorf("failed to parse item on line %d: %w", lineNum, err)
		}
		item, err := itemFromPlain(plain)
		if err != nil {
			return nil, fmt.Errorf("failed to convert item on line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return items, nil
}
