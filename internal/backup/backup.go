// Package backup exports the engine's DynamoDB tables to timestamped
// JSONL archives with a manifest, and restores them. The snapshot cache
// is the primary target, so the restore path defaults to conditional
// writes that never clobber rows the pipeline wrote since the backup.
package backup

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultS3Prefix is the key prefix used when the caller gives none.
const DefaultS3Prefix = "creatorstats-backup"

// BackupOptions configures backup behavior.
type BackupOptions struct {
	Tables       []string
	OutputDir    string
	S3Bucket     string
	S3Prefix     string
	Compress     bool
	ProgressFunc func(tableName string, itemsBackedUp int)
	Log          logrus.FieldLogger
}

// BackupResult contains information about a completed backup.
type BackupResult struct {
	Manifest       Manifest
	BackupPath     string
	TablesBackedUp int
	TotalItems     int
	Duration       time.Duration
}

// Backup exports the given tables under OutputDir/backup-<timestamp> and
// optionally uploads the directory to S3. Tables are exported in parallel.
func Backup(ctx context.Context, options BackupOptions) (*BackupResult, error) {
	log := ensureLogger(options.Log)
	startTime := time.Now()

	timestamp := GenerateBackupTimestamp()
	backupDir := filepath.Join(options.OutputDir, fmt.Sprintf("backup-%s", timestamp))
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	dbClient, err := NewDynamoDBClient(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}

	manifest := Manifest{
		RunID:           uuid.New().String(),
		BackupTimestamp: timestamp,
		BackupVersion:   manifestVersion,
		Tables:          []TableManifest{},
	}
	log = log.WithField("runId", manifest.RunID)
	log.Infof("starting backup to %s", backupDir)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var backupErr error

	for _, tableName := range options.Tables {
		wg.Add(1)
		go func(tblName string) {
			defer wg.Done()

			tm, err := backupTable(ctx, dbClient, backupDir, tblName, options, log)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if backupErr == nil {
					backupErr = err
				}
				return
			}
			manifest.Tables = append(manifest.Tables, *tm)
			manifest.TotalItems += tm.ItemCount
		}(tableName)
	}
	wg.Wait()

	if backupErr != nil {
		return nil, backupErr
	}

	// Parallel exports append in completion order
	sort.Slice(manifest.Tables, func(i, j int) bool {
		return manifest.Tables[i].TableName < manifest.Tables[j].TableName
	})

	manifestPath := filepath.Join(backupDir, "manifest.json")
	if err := WriteManifest(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	result := &BackupResult{
		Manifest:       manifest,
		BackupPath:     backupDir,
		TablesBackedUp: len(options.Tables),
		TotalItems:     manifest.TotalItems,
		Duration:       time.Since(startTime),
	}

	log.WithFields(logrus.Fields{
		"tables":   result.TablesBackedUp,
		"items":    result.TotalItems,
		"duration": result.Duration.String(),
	}).Info("backup complete")

	if options.S3Bucket != "" {
		s3Client, err := NewS3Client(ctx, options.S3Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}

		s3Prefix := options.S3Prefix
		if s3Prefix == "" {
			s3Prefix = DefaultS3Prefix
		}
		s3Prefix = fmt.Sprintf("%s/backup-%s", s3Prefix, timestamp)

		log.Infof("uploading backup to s3://%s/%s", options.S3Bucket, s3Prefix)
		if err := s3Client.UploadDirectory(ctx, backupDir, s3Prefix); err != nil {
			return nil, fmt.Errorf("failed to upload to S3: %w", err)
		}
		log.Info("backup uploaded")
	}

	return result, nil
}

// backupTable scans one table and writes its JSONL export, checksum, and
// schema metadata into backupDir.
func backupTable(ctx context.Context, dbClient *DynamoDBClient, backupDir, tableName string, options BackupOptions, log logrus.FieldLogger) (*TableManifest, error) {
	tableStart := time.Now()
	log.Infof("backing up table %s", tableName)

	itemsCounted := 0
	progressFunc := func(count int) {
		itemsCounted += count
		if options.ProgressFunc != nil {
			options.ProgressFunc(tableName, itemsCounted)
		}
	}

	items, err := dbClient.ScanTable(ctx, tableName, progressFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to backup table %s: %w", tableName, err)
	}

	fileName := fmt.Sprintf("%s.jsonl", tableName)
	if options.Compress {
		fileName += ".gz"
	}
	filePath := filepath.Join(backupDir, fileName)

	fileSize, err := writeItemsJSONL(filePath, items, options.Compress)
	if err != nil {
		return nil, fmt.Errorf("failed to write items for table %s: %w", tableName, err)
	}

	checksum, err := FileChecksum(filePath)
	if err != nil {
		log.WithError(err).Warnf("failed to checksum export of %s", tableName)
		checksum = ""
	}

	if desc, err := dbClient.GetTableDescription(ctx, tableName); err != nil {
		log.WithError(err).Warnf("failed to describe table %s", tableName)
	} else {
		metadataPath := filepath.Join(backupDir, fmt.Sprintf("%s.metadata.json", tableName))
		if err := writeTableMetadata(metadataPath, desc); err != nil {
			log.WithError(err).Warnf("failed to write metadata for %s", tableName)
		}
	}

	return &TableManifest{
		TableName:      tableName,
		ItemCount:      len(items),
		FileSize:       fileSize,
		FileName:       fileName,
		Checksum:       checksum,
		BackupDuration: time.Since(tableStart).String(),
	}, nil
}

// writeItemsJSONL writes one item per line, gzip-compressed when asked.
func writeItemsJSONL(filePath string, items []map[string]types.AttributeValue, compress bool) (int64, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var w io.Writer = file
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(file)
		w = gz
	}

	encoder := json.NewEncoder(w)
	for _, item := range items {
		plain, err := itemToPlain(item)
		if err != nil {
			if gz != nil {
				gz.Close()
			}
			return 0, err
		}
		if err := encoder.Encode(plain); err != nil {
			if gz != nil {
				gz.Close()
			}
			return 0, fmt.Errorf("failed to encode item: %w", err)
		}
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return 0, fmt.Errorf("failed to close gzip writer: %w", err)
		}
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return 0, nil
	}
	return fileInfo.Size(), nil
}

// writeTableMetadata writes the table schema next to its export so a
// restore into a freshly created table can check key layout.
func writeTableMetadata(filePath string, tableDesc *types.TableDescription) error {
	if tableDesc == nil {
		return nil
	}

	metadata := map[string]interface{}{
		"tableName":      aws.ToString(tableDesc.TableName),
		"itemCount":      aws.ToInt64(tableDesc.ItemCount),
		"tableSizeBytes": aws.ToInt64(tableDesc.TableSizeBytes),
		"keySchema":      tableDesc.KeySchema,
	}
	if tableDesc.GlobalSecondaryIndexes != nil {
		metadata["globalSecondaryIndexes"] = tableDesc.GlobalSecondaryIndexes
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}
