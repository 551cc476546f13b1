package classifier

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cardio-risk/backend/internal/logging"
)

// maxArtifactSize bounds how much of an artifact is read into memory.
const maxArtifactSize = 64 << 20

// Source yields the raw bytes of a model artifact.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
	Location() string
}

// NewSource picks a Source for location: "s3://bucket/key" or a local path.
func NewSource(ctx context.Context, location string) (Source, error) {
	if location == "" {
		return nil, goerr.New("model location is empty")
	}

	if rest, ok := strings.CutPrefix(location, "s3://"); ok {
		bucket, key, found := strings.Cut(rest, "/")
		if !found || bucket == "" || key == "" {
			return nil, goerr.New("s3 location must be s3://bucket/key", goerr.V("location", location))
		}

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "unable to load AWS SDK config")
		}
		client := s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true
		})
		return NewS3Source(client, bucket, key), nil
	}

	return NewFileSource(location), nil
}

type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Location() string {
	return s.path
}

func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open model file", goerr.V("path", s.path))
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.From(ctx).Warn("failed to close model file", "path", s.path, "error", err)
		}
	}()

	return readLimited(f)
}

// ObjectGetter is the subset of the S3 client used to fetch artifacts.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Source struct {
	client ObjectGetter
	bucket string
	key    string
}

func NewS3Source(client ObjectGetter, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

func (s *S3Source) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &s.key,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get model object",
			goerr.V("bucket", s.bucket), goerr.V("key", s.key))
	}
	defer out.Body.Close()

	logging.From(ctx).Info("model artifact fetched from S3", "bucket", s.bucket, "key", s.key)
	return readLimited(out.Body)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxArtifactSize+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read model artifact")
	}
	if len(data) > maxArtifactSize {
		return nil, goerr.Wrap(ErrInvalidArtifact, "model artifact is too large", goerr.V("limit", maxArtifactSize))
	}
	return data, nil
}
