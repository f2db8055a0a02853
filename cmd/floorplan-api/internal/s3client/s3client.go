package s3client

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"
)

// Client stores export snapshots in a s3 compatible object storage.
type Client struct {
	*s3.S3
	Session      client.ConfigProvider
	log          *zap.SugaredLogger
	Url          string
	Key          string
	Secret       string
	ExportBucket string
}

func New(log *zap.SugaredLogger, url, key, secret, exportBucket string) (*Client, error) {
	c := &Client{
		log:          log,
		Url:          url,
		Key:          key,
		Secret:       secret,
		ExportBucket: exportBucket,
	}
	s, err := c.newSession()
	if err != nil {
		return nil, err
	}
	c.S3 = s3.New(s)
	c.Session = s
	return c, nil
}

func (c *Client) newSession() (client.ConfigProvider, error) {
	dummyRegion := "dummy" // we don't use AWS S3, we don't need a proper region
	hostnameImmutable := true
	return session.NewSession(&aws.Config{
		Region:           &dummyRegion,
		Endpoint:         &c.Url,
		Credentials:      credentials.NewStaticCredentials(c.Key, c.Secret, ""),
		S3ForcePathStyle: &hostnameImmutable,
		Retryer: client.DefaultRetryer{
			NumMaxRetries: 3,
			MinRetryDelay: 10 * time.Second,
		},
	})
}

// Upload stores data under the given key in the export bucket, the bucket is
// created if it does not exist yet.
func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte) error {
	err := c.ensureBucket(ctx, c.ExportBucket)
	if err != nil {
		return err
	}

	uploader := s3manager.NewUploader(c.Session)
	out, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      &c.ExportBucket,
		Key:         &key,
		ContentType: &contentType,
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return err
	}

	c.log.Infow("uploaded export snapshot", "bucket", c.ExportBucket, "key", key, "location", out.Location)
	return nil
}

func (c *Client) ensureBucket(ctx context.Context, bucket string) error {
	params := &s3.CreateBucketInput{
		Bucket: &bucket,
	}
	_, err := c.CreateBucketWithContext(ctx, params)
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) {
			switch aerr.Code() {
			case s3.ErrCodeBucketAlreadyExists:
			case s3.ErrCodeBucketAlreadyOwnedByYou:
			default:
				return err
			}
		} else {
			return err
		}
	}
	return nil
}
