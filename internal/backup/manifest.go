package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

const manifestVersion = "1.0"

// timestampLayout keeps backup directory names lexically sortable and
// filesystem safe (no colons).
const timestampLayout = "2006-01-02T15-04-05Z"

// Manifest describes one backup run.
type Manifest struct {
	RunID           string          `json:"runId"`
	BackupTimestamp string          `json:"backupTimestamp"`
	BackupVersion   string          `json:"backupVersion"`
	Tables          []TableManifest `json:"tables"`
	TotalItems      int             `json:"totalItems"`
}

// TableManifest records one table's export.
type TableManifest struct {
	TableName      string `json:"tableName"`
	ItemCount      int    `json:"itemCount"`
	FileSize       int64  `json:"fileSize"`
	FileName       string `json:"fileName"`
	Checksum       string `json:"checksum"`
	BackupDuration string `json:"backupDuration"`
}

// Table returns the manifest entry for the named table, or nil when the
// backup never covered it.
func (m *Manifest) Table(name string) *TableManifest {
	for i := range m.Tables {
		if m.Tables[i].TableName == name {
			return &m.Tables[i]
		}
	}
	return nil
}

// WriteManifest writes the manifest to a file as indented JSON.
func WriteManifest(path string, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// ReadManifest reads and parses a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &manifest, nil
}

// FileChecksum returns the hex SHA-256 of the file's contents.
func FileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// GenerateBackupTimestamp generates a timestamp string for backup
// directory names.
func GenerateBackupTimestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

// ParseBackupTimestamp parses a backup timestamp string.
func ParseBackupTimestamp(ts string) (time.Time, error) {
	return time.Parse(timestampLayout, ts)
}
