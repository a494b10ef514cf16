package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/finsight-app/finsight/internal/logging"
	sc "github.com/finsight-app/finsight/internal/server/config"
)

// ReportSummary describes one analysis report object in the bucket.
type ReportSummary struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ReportService reads finished analysis reports from the object store.
// Reports are JSON documents whose keys start with the owning client id,
// e.g. "INV_9A0B1C_20260830/analysis.json".
type ReportService struct {
	config *sc.Config
	logger logging.Logger
}

func NewReportService(cfg *sc.Config, logger logging.Logger) *ReportService {
	return &ReportService{config: cfg, logger: logger.With("module", "reports")}
}

// s3API is the slice of the S3 client the service uses.
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

func buildS3Client(ctx context.Context, cfg *sc.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			// MinIO and friends need path-style addressing.
			o.UsePathStyle = true
		}
	})

	return client, nil
}

// Seams for tests.
var (
	newS3Client = func(ctx context.Context, cfg *sc.Config) (s3API, error) {
		return buildS3Client(ctx, cfg)
	}
	newS3Presigner = func(ctx context.Context, cfg *sc.Config) (s3Presigner, error) {
		client, err := buildS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s3.NewPresignClient(client), nil
	}
)

// ListReports returns every JSON report whose key starts with clientID.
// Non-JSON objects under the prefix are skipped.
func (s *ReportService) ListReports(ctx context.Context, clientID string) ([]ReportSummary, error) {
	client, err := newS3Client(ctx, s.config)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.config.S3Bucket),
		Prefix: aws.String(clientID),
	})
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]ReportSummary, 0, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		reports = append(reports, ReportSummary{
			Key:          key,
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}

	return reports, nil
}

// GetReport fetches one report object and decodes it as a JSON document.
func (s *ReportService) GetReport(ctx context.Context, key string) (map[string]any, error) {
	client, err := newS3Client(ctx, s.config)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", key, err)
	}
	defer out.Body.Close()

	var report map[string]any
	if err := json.NewDecoder(out.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", key, err)
	}

	return report, nil
}

// PresignReportURL returns a short-lived download URL for a report object.
func (s *ReportService) PresignReportURL(ctx context.Context, key string) (string, error) {
	presignClient, err := newS3Presigner(ctx, s.config)
	if err != nil {
		return "", fmt.Errorf("s3 presign client: %w", err)
	}

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("presign report %s: %w", key, err)
	}

	return req.URL, nil
}
