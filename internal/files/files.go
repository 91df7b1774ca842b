package files

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type FileStorage struct {
	cl     *minio.Client
	Bucket string
	// Reports are mirrored here when set.
	ReportBucket string
}

type Config struct {
	Url          string
	Login        string
	Password     string
	Bucket       string
	ReportBucket string
	UseSSL       bool
}

func NewFileStorage(cfg Config) (*FileStorage, error) {
	client, err := minio.New(cfg.Url, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Login, cfg.Password, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create minio client")
	}
	return &FileStorage{cl: client, Bucket: cfg.Bucket, ReportBucket: cfg.ReportBucket}, nil
}

func (s *FileStorage) GetFile(ctx context.Context, filename string) (io.ReadCloser, error) {
	file, err := s.cl.GetObject(ctx, s.Bucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// PublishReport replaces every object under key/ in the report bucket with the files of dir.
func (s *FileStorage) PublishReport(ctx context.Context, dir, key string) error {
	if s.ReportBucket == "" {
		return nil
	}
	prefix := path.Clean(key) + "/"
	if err := s.removePrefix(ctx, prefix); err != nil {
		return errors.Wrap(err, "failed to clear old report")
	}

	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		object := prefix + filepath.ToSlash(rel)
		opts := minio.PutObjectOptions{ContentType: mime.TypeByExtension(filepath.Ext(p))}
		if _, err := s.cl.FPutObject(ctx, s.ReportBucket, object, p, opts); err != nil {
			return errors.Wrapf(err, "failed to upload %s", object)
		}
		slog.Debug("report object uploaded", "bucket", s.ReportBucket, "object", object)
		return nil
	})
}

func (s *FileStorage) removePrefix(ctx context.Context, prefix string) error {
	objects := s.cl.ListObjects(ctx, s.ReportBucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	var err error
	for removeErr := range s.cl.RemoveObjects(ctx, s.ReportBucket, objects, minio.RemoveObjectsOptions{}) {
		if removeErr.Err != nil && err == nil {
			err = removeErr.Err
		}
	}
	return err
}
