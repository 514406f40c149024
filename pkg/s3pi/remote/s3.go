package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// s3API is the slice of the AWS SDK the store uses. Tests substitute a
// fake; *s3.Client satisfies it.
type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config configures an S3Store.
type S3Config struct {
	// Bucket is the bucket holding the package index.
	Bucket string

	// Region overrides the region from the default credential chain.
	Region string

	// Fs is the filesystem used for the local side of transfers.
	// Nil means the OS filesystem.
	Fs afero.Fs

	// Logger receives per-object debug messages.
	Logger *log.Logger
}

// S3Store implements Store against an S3 bucket.
type S3Store struct {
	client s3API
	bucket string
	fs     afero.Fs
	logger *log.Logger
}

// NewS3Store builds a store from the default AWS credential chain.
// Credential or endpoint problems surface as ErrUnavailable so callers
// can distinguish "cannot talk to the remote at all" from every other
// failure.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		fs:     fsys,
		logger: cfg.Logger,
	}, nil
}

// Exists reports whether key exists in the bucket.
func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			s.logger.Debug("object not found", "bucket", s.bucket, "key", key)
			return false, nil
		}
		return false, fmt.Errorf("checking %q in %q: %w", key, s.bucket, err)
	}
	return true, nil
}

// List returns every object key under prefix.
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %q in %q: %w", prefix, s.bucket, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// Download fetches key into localPath, creating parent directories.
func (s *S3Store) Download(ctx context.Context, key, localPath string) error {
	s.logger.Debug("downloading object", "bucket", s.bucket, "key", key, "to", localPath)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("downloading %q from %q: %w", key, s.bucket, err)
	}
	defer out.Body.Close()

	if err := s.fs.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("creating directory for %q: %w", localPath, err)
	}
	f, err := s.fs.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", localPath, err)
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		return fmt.Errorf("writing %q: %w", localPath, err)
	}
	return f.Close()
}

// Upload stores the file at localPath under key with a public-read ACL.
func (s *S3Store) Upload(ctx context.Context, localPath, key string) error {
	f, err := s.fs.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening %q: %w", localPath, err)
	}
	defer f.Close()

	info, err := s.fs.Stat(localPath)
	if err != nil {
		return fmt.Errorf("stating %q: %w", localPath, err)
	}

	s.logger.Debug("uploading object", "bucket", s.bucket, "key", key, "bytes", info.Size())

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentTypeFor(localPath)),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("uploading %q to %q: %w", localPath, key, err)
	}
	return nil
}

// contentTypeFor guesses a content type from the file extension so index
// pages are served as HTML.
func contentTypeFor(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// isNotFound reports whether err is the SDK's way of saying the object
// does not exist.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
