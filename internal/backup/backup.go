// Package backup stores encrypted snapshots of the lead database in
// S3-compatible object storage.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"
)

const (
	keyTimeLayout = "20060102T150405Z"
	keySuffix     = ".db.enc"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Configured reports whether the bucket and credentials are set.
func (c S3Config) Configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// NewS3Client builds a path-style client, pointed at Endpoint when set.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Object is one stored archive.
type Object struct {
	Key       string
	Size      int64
	CreatedAt time.Time
}

// Manager snapshots db, encrypts the snapshot and uploads it.
type Manager struct {
	client s3Client
	bucket string
	prefix string
	db     *sql.DB
	now    func() time.Time
}

func NewManager(client s3Client, bucket, prefix string, db *sql.DB) *Manager {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Manager{client: client, bucket: bucket, prefix: prefix, db: db, now: time.Now}
}

// Run uploads a new archive and returns it.
func (m *Manager) Run(ctx context.Context, passphrase string) (Object, error) {
	snapshot, err := m.snapshot(ctx)
	if err != nil {
		return Object{}, err
	}
	sealed, err := Seal(snapshot, passphrase)
	if err != nil {
		return Object{}, fmt.Errorf("encrypt: %w", err)
	}

	now := m.now().UTC()
	obj := Object{
		Key:       m.prefix + "leadline-" + now.Format(keyTimeLayout) + keySuffix,
		Size:      int64(len(sealed)),
		CreatedAt: now,
	}
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(obj.Size),
	})
	if err != nil {
		return Object{}, fmt.Errorf("upload to s3: %w", err)
	}
	return obj, nil
}

// snapshot writes a consistent copy of the database with VACUUM INTO and
// returns its bytes.
func (m *Manager) snapshot(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "leadline-backup-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return nil, fmt.Errorf("snapshot database: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// List returns the stored archives, newest first.
func (m *Manager) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(m.bucket),
		Prefix: aws.String(m.prefix),
	}
	for {
		out, err := m.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list s3 objects: %w", err)
		}
		for _, o := range out.Contents {
			key := aws.ToString(o.Key)
			created, ok := parseKeyTime(strings.TrimPrefix(key, m.prefix))
			if !ok {
				continue
			}
			objects = append(objects, Object{Key: key, Size: aws.ToInt64(o.Size), CreatedAt: created})
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].CreatedAt.After(objects[j].CreatedAt)
	})
	return objects, nil
}

func parseKeyTime(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, "leadline-") || !strings.HasSuffix(name, keySuffix) {
		return time.Time{}, false
	}
	ts := strings.TrimSuffix(strings.TrimPrefix(name, "leadline-"), keySuffix)
	t, err := time.Parse(keyTimeLayout, ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Restore downloads key, decrypts it, checks its integrity and writes it to
// dst. dst must not exist; the running database is never overwritten.
func (m *Manager) Restore(ctx context.Context, key, passphrase, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("restore target %s already exists", dst)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat restore target: %w", err)
	}

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	sealed, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	plaintext, err := Open(sealed, passphrase)
	if err != nil {
		return fmt.Errorf("decrypt backup: %w", err)
	}

	tmp := dst + ".partial"
	if err := os.WriteFile(tmp, plaintext, 0600); err != nil {
		return fmt.Errorf("write restored file: %w", err)
	}
	defer os.Remove(tmp)

	if err := checkIntegrity(ctx, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("move restored file: %w", err)
	}
	return nil
}

func checkIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// Prune deletes all but the newest keep archives and returns how many it removed.
func (m *Manager) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, errors.New("keep must be at least 1")
	}
	objects, err := m.List(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, o := range objects[min(keep, len(objects)):] {
		_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.bucket),
			Key:    aws.String(o.Key),
		})
		if err != nil {
			return removed, fmt.Errorf("delete %s: %w", o.Key, err)
		}
		removed++
	}
	return removed, nil
}
