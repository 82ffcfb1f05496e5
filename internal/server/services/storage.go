package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/failvault/internal/server/config"
	"github.com/google/uuid"
)

// Test seams around the AWS SDK.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

const presignExpiry = 15 * time.Minute

// StorageService hands out presigned upload slots for record metadata
// documents.
type StorageService struct {
	config *sc.Config
}

func NewStorageService(cfg *sc.Config) *StorageService {
	return &StorageService{config: cfg}
}

// GetRandomStorageKey places metadata under a per-day prefix.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("metadata/%d/%02d/%02d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *StorageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// GetPresignedPutURL returns the object key, a presigned PUT url and the
// token URI the object will be reachable under.
func (s *StorageService) GetPresignedPutURL(ctx context.Context) (key, url, tokenURI string, err error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", "", err
	}

	bucket := s.config.S3Bucket
	key = GetRandomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String("application/json"),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", "", err
	}

	return key, req.URL, fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
