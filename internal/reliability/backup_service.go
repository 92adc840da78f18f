package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/database"
	"github.com/aristath/paddock/internal/modules/settings"
	"github.com/aristath/paddock/internal/utils"
)

// backupPrefix namespaces backup objects inside the bucket
const backupPrefix = "paddock-backups/"

// BackupService creates consistent snapshots of all databases and uploads
// them to an S3-compatible bucket. Snapshots use VACUUM INTO so a backup is
// a single coherent copy even while races are being recorded.
type BackupService struct {
	databases    []*database.DB
	settingsRepo *settings.Repository
	dataDir      string
	log          zerolog.Logger
}

// BackupMetadata describes one backup archive
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes a single database inside a backup
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// NewBackupService creates a new backup service over the open databases
func NewBackupService(databases []*database.DB, settingsRepo *settings.Repository, dataDir string, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases:    databases,
		settingsRepo: settingsRepo,
		dataDir:      dataDir,
		log:          log.With().Str("service", "backup").Logger(),
	}
}

// Enabled reports whether backups are switched on and fully configured
func (s *BackupService) Enabled() (bool, error) {
	enabled, err := s.settingsRepo.GetBool("backup_enabled", false)
	if err != nil || !enabled {
		return false, err
	}
	cfg, err := s.s3Config()
	if err != nil {
		return false, err
	}
	return cfg.Valid(), nil
}

// Run creates a backup archive and uploads it, then applies the retention
// policy. Returns without error when backups are disabled or unconfigured.
func (s *BackupService) Run(ctx context.Context) error {
	enabled, err := s.Enabled()
	if err != nil {
		return err
	}
	if !enabled {
		s.log.Debug().Msg("Backups disabled or unconfigured, skipping")
		return nil
	}

	cfg, err := s.s3Config()
	if err != nil {
		return err
	}
	client, err := NewS3Client(ctx, cfg, s.log)
	if err != nil {
		return err
	}

	s.log.Info().Msg("Starting backup")
	startTime := time.Now()

	archivePath, err := s.createArchive()
	if err != nil {
		return err
	}
	defer os.Remove(archivePath)

	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open backup archive: %w", err)
	}
	defer file.Close()

	key := backupPrefix + filepath.Base(archivePath)
	if err := client.Upload(ctx, key, file); err != nil {
		return err
	}

	if err := s.applyRetention(ctx, client); err != nil {
		s.log.Warn().Err(err).Msg("Failed to apply backup retention")
	}

	s.log.Info().
		Str("key", key).
		Dur("took", time.Since(startTime)).
		Msg("Backup uploaded")
	return nil
}

// createArchive snapshots every database into a staging directory and packs
// the snapshots plus a metadata file into a timestamped tar.gz.
func (s *BackupService) createArchive() (string, error) {
	defer utils.OperationTimer("backup_archive", s.log)()

	stagingDir := filepath.Join(s.dataDir, "backup-staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	metadata := BackupMetadata{
		Timestamp: time.Now().UTC(),
		Databases: make([]DatabaseMetadata, 0, len(s.databases)),
	}

	for _, db := range s.databases {
		snapshotPath := filepath.Join(stagingDir, db.Name()+".db")

		s.log.Debug().Str("database", db.Name()).Msg("Snapshotting database")

		if err := db.Checkpoint(); err != nil {
			return "", err
		}
		if _, err := db.Conn().Exec("VACUUM INTO ?", snapshotPath); err != nil {
			return "", fmt.Errorf("failed to snapshot %s: %w", db.Name(), err)
		}

		info, err := os.Stat(snapshotPath)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s snapshot: %w", db.Name(), err)
		}
		checksum, err := fileChecksum(snapshotPath)
		if err != nil {
			return "", fmt.Errorf("failed to checksum %s snapshot: %w", db.Name(), err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      db.Name(),
			Filename:  db.Name() + ".db",
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
	}

	metadataPath := filepath.Join(stagingDir, "backup-metadata.json")
	metadataBytes, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup metadata: %w", err)
	}
	if err := os.WriteFile(metadataPath, metadataBytes, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup metadata: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02-150405")
	archivePath := filepath.Join(s.dataDir, fmt.Sprintf("paddock-%s.tar.gz", timestamp))
	if err := createTarGz(archivePath, stagingDir); err != nil {
		return "", err
	}

	return archivePath, nil
}

// applyRetention deletes the oldest remote backups beyond the configured count
func (s *BackupService) applyRetention(ctx context.Context, client *S3Client) error {
	keep, err := s.settingsRepo.GetInt("backup_keep_count", 14)
	if err != nil {
		return err
	}
	if keep <= 0 {
		return nil
	}

	keys, err := client.ListKeys(ctx, backupPrefix)
	if err != nil {
		return err
	}

	for len(keys) > keep {
		oldest := keys[0]
		keys = keys[1:]
		if err := client.Delete(ctx, oldest); err != nil {
			return err
		}
		s.log.Info().Str("key", oldest).Msg("Deleted expired backup")
	}
	return nil
}

func (s *BackupService) s3Config() (S3Config, error) {
	endpoint, err := s.settingsRepo.GetString("s3_endpoint", "")
	if err != nil {
		return S3Config{}, err
	}
	region, err := s.settingsRepo.GetString("s3_region", "auto")
	if err != nil {
		return S3Config{}, err
	}
	bucket, err := s.settingsRepo.GetString("s3_bucket", "")
	if err != nil {
		return S3Config{}, err
	}
	accessKey, err := s.settingsRepo.GetString("s3_access_key", "")
	if err != nil {
		return S3Config{}, err
	}
	secretKey, err := s.settingsRepo.GetString("s3_secret_key", "")
	if err != nil {
		return S3Config{}, err
	}

	return S3Config{
		Endpoint:  endpoint,
		Region:    region,
		Bucket:    bucket,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}, nil
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// createTarGz packs every file in dir (flat, no subdirectories) into a
// gzip-compressed tar archive at archivePath.
func createTarGz(archivePath, dir string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	gzw := gzip.NewWriter(out)
	defer gzw.Close()
	tw := tar.NewWriter(gzw)
	defer tw.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read staging directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("failed to build tar header for %s: %w", entry.Name(), err)
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header for %s: %w", entry.Name(), err)
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", entry.Name(), err)
		}
		if _, err := io.Copy(tw, file); err != nil {
			file.Close()
			return fmt.Errorf("failed to archive %s: %w", entry.Name(), err)
		}
		file.Close()
	}

	return nil
}
