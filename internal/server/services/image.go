package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/estately/estately/internal/dbx"
	sc "github.com/estately/estately/internal/server/config"
	"github.com/estately/estately/internal/server/models"
	"github.com/estately/estately/internal/server/repositories/repomanager"
)

// presignExpiry bounds how long an upload or download URL stays usable.
const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ImageUpload is the response to an upload request: the created metadata
// record plus a presigned PUT URL the client uploads the bytes to.
type ImageUpload struct {
	Image     *models.Image
	UploadURL string
}

// ImageService manages listing photos: the metadata lives in Postgres, the
// bytes in S3-compatible object storage accessed via presigned URLs so the
// server never proxies image payloads.
type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config) *ImageService {
	return &ImageService{db: db, repomanager: m, config: config}
}

// GetRandomStorageKey builds a date-sharded object key for a new upload.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("listings/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ImageService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// RequestUpload creates an unapproved image record for the property and
// returns it with a presigned PUT URL. Only the listing owner or an admin
// may attach images.
func (s *ImageService) RequestUpload(ctx context.Context, actorID string, actorRoles []string, propertyID string, description string, sortOrder int) (*ImageUpload, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, fmt.Errorf("error creating presign client: %v", err)
	}

	var upload *ImageUpload

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		property, err := s.repomanager.Properties(tx).GetByID(ctx, propertyID)
		if err != nil {
			return err
		}
		if err := requireOwnerOrAdmin(property.OwnerID, actorID, actorRoles); err != nil {
			return err
		}

		bucket := s.config.S3Bucket
		key := GetRandomStorageKey()

		req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
			Bucket: &bucket,
			Key:    &key,
		}, s3.WithPresignExpires(presignExpiry))
		if err != nil {
			return fmt.Errorf("error presigning upload: %v", err)
		}

		img, err := s.repomanager.Images(tx).Create(ctx, &models.Image{
			PropertyID:  propertyID,
			UploaderID:  actorID,
			StorageKey:  key,
			Description: description,
			SortOrder:   sortOrder,
		})
		if err != nil {
			return err
		}

		upload = &ImageUpload{Image: img, UploadURL: req.URL}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return upload, nil
}

// GetDownloadURL returns a presigned GET URL for the image bytes.
// Unapproved images are only visible to their uploader and admins.
func (s *ImageService) GetDownloadURL(ctx context.Context, actorID string, actorRoles []string, imageID string) (string, error) {
	img, err := s.repomanager.Images(s.db).GetByID(ctx, imageID)
	if err != nil {
		return "", err
	}
	if !img.Approved {
		if err := requireOwnerOrAdmin(img.UploaderID, actorID, actorRoles); err != nil {
			return "", err
		}
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", fmt.Errorf("error creating presign client: %v", err)
	}

	bucket := s.config.S3Bucket
	key := img.StorageKey

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("error presigning download: %v", err)
	}
	return req.URL, nil
}

// ListForProperty returns the property's images. Non-owners only see
// approved ones.
func (s *ImageService) ListForProperty(ctx context.Context, actorID string, actorRoles []string, propertyID string) ([]*models.Image, error) {
	property, err := s.repomanager.Properties(s.db).GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	approvedOnly := requireOwnerOrAdmin(property.OwnerID, actorID, actorRoles) != nil
	return s.repomanager.Images(s.db).ListForProperty(ctx, propertyID, approvedOnly)
}

// ListMine returns every image the user has uploaded, newest first,
// regardless of approval state.
func (s *ImageService) ListMine(ctx context.Context, actorID string) ([]*models.Image, error) {
	return s.repomanager.Images(s.db).ListForUploader(ctx, actorID)
}

// ListPending returns unapproved images awaiting moderation. Admin only.
func (s *ImageService) ListPending(ctx context.Context, actorRoles []string) ([]*models.Image, error) {
	if err := requireAdmin(actorRoles); err != nil {
		return nil, err
	}
	return s.repomanager.Images(s.db).ListPending(ctx)
}

// Approve marks an image as approved for public display. Admin only.
func (s *ImageService) Approve(ctx context.Context, actorRoles []string, imageID string) error {
	if err := requireAdmin(actorRoles); err != nil {
		return err
	}
	return s.repomanager.Images(s.db).Approve(ctx, imageID)
}

// Delete removes the image record. The uploader, the listing owner, and
// admins may delete.
func (s *ImageService) Delete(ctx context.Context, actorID string, actorRoles []string, imageID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		img, err := s.repomanager.Images(tx).GetByID(ctx, imageID)
		if err != nil {
			return err
		}
		if img.UploaderID != actorID {
			property, err := s.repomanager.Properties(tx).GetByID(ctx, img.PropertyID)
			if err != nil {
				return err
			}
			if err := requireOwnerOrAdmin(property.OwnerID, actorID, actorRoles); err != nil {
				return err
			}
		}
		return s.repomanager.Images(tx).Delete(ctx, imageID)
	})
}
