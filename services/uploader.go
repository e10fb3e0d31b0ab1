package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anjiri1684/chat_backend/apperrors"
	config "github.com/anjiri1684/chat_backend/configs"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// ImageUploader stores a message image and returns its public URL. image is
// either a base64 data URI or a remote URL.
type ImageUploader interface {
	Upload(ctx context.Context, image string) (string, error)
}

// NewImageUploader picks the backend named in the settings. It returns a nil
// uploader when uploads are disabled.
func NewImageUploader(ctx context.Context, s config.Settings) (ImageUploader, error) {
	switch s.UploadBackend {
	case config.UploadBackendCloudinary:
		u, err := NewCloudinaryUploader(s.CloudinaryURL, s.UploadFolder)
		if err != nil {
			return nil, err
		}
		return u, nil
	case config.UploadBackendS3:
		u, err := NewS3Uploader(ctx, s.S3Bucket, s.S3BaseURL, s.UploadFolder)
		if err != nil {
			return nil, err
		}
		return u, nil
	case config.UploadBackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown upload backend %q", s.UploadBackend)
	}
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cloudinaryURL, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, image string) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, image, uploader.UploadParams{Folder: u.folder})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	return res.SecureURL, nil
}

type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
	Folder    string `json:"folder"`
}

// Sign produces the parameters a client needs to upload straight to Cloudinary.
func (u *CloudinaryUploader) Sign(now time.Time) (UploadSignature, error) {
	params, err := api.StructToParams(uploader.UploadParams{Folder: u.folder})
	if err != nil {
		return UploadSignature{}, fmt.Errorf("prepare signature params: %w", err)
	}

	timestamp := now.Unix()
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(params, u.cld.Config.Cloud.APISecret)
	if err != nil {
		return UploadSignature{}, fmt.Errorf("sign upload params: %w", err)
	}

	return UploadSignature{
		Signature: signature,
		Timestamp: timestamp,
		APIKey:    u.cld.Config.Cloud.APIKey,
		CloudName: u.cld.Config.Cloud.CloudName,
		Folder:    u.folder,
	}, nil
}

// S3PutObjectAPI is the slice of the S3 client the uploader needs.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	client  S3PutObjectAPI
	bucket  string
	baseURL string
	folder  string
}

func NewS3Uploader(ctx context.Context, bucket, baseURL, folder string) (*S3Uploader, error) {
	if bucket == "" {
		return nil, errors.New("S3_BUCKET is required for the s3 upload backend")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3UploaderWithClient(s3.NewFromConfig(cfg), bucket, baseURL, folder), nil
}

func NewS3UploaderWithClient(client S3PutObjectAPI, bucket, baseURL, folder string) *S3Uploader {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Uploader{client: client, bucket: bucket, baseURL: baseURL, folder: folder}
}

// Upload stores data URIs in the bucket. Remote URLs are already hosted and are kept as is.
func (u *S3Uploader) Upload(ctx context.Context, image string) (string, error) {
	if !strings.HasPrefix(image, "data:") {
		return image, nil
	}

	contentType, data, err := decodeDataURI(image)
	if err != nil {
		return "", err
	}

	key := uuid.NewString() + extensionFor(contentType)
	if u.folder != "" {
		key = u.folder + "/" + key
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return u.baseURL + "/" + key, nil
}

func decodeDataURI(uri string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, apperrors.InvalidArgument("Image must be a base64 data URI")
	}

	contentType := strings.TrimSuffix(header, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, apperrors.InvalidArgument("Image is not valid base64")
	}
	return contentType, data, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
