package media

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

// S3Store uploads images to an S3 bucket. Objects are public-read and served
// from PublicURL (a CDN in front of the bucket, or the bucket endpoint).
type S3Store struct {
	bucket    string
	publicURL string
	uploader  *s3manager.Uploader
	svc       *s3.S3
}

func NewS3Store(bucket, region, publicURL string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create aws session")
	}
	if publicURL == "" {
		publicURL = "https://" + bucket + ".s3." + region + ".amazonaws.com/"
	}
	if !strings.HasSuffix(publicURL, "/") {
		publicURL += "/"
	}
	return &S3Store{
		bucket:    bucket,
		publicURL: publicURL,
		uploader:  s3manager.NewUploader(sess),
		svc:       s3.New(sess),
	}, nil
}

func (s *S3Store) Save(ctx context.Context, fileName string, content io.Reader) (string, error) {
	key := NewKey(fileName)
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   content,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload to s3")
	}
	return key, nil
}

func (s *S3Store) URL(key string) string {
	return s.publicURL + key
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrap(err, "failed to delete from s3")
}
