package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/estately/estately/internal/common"
	sc "github.com/estately/estately/internal/server/config"
	"github.com/estately/estately/internal/server/models"
)

// stubPresign swaps the AWS seams for stubs so no network is touched.
func stubPresign(t *testing.T) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.test/put/" + *in.Key}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.test/get/" + *in.Key}, nil
	}
}

func imageFixtures() *fakeRepoManager {
	return &fakeRepoManager{
		p: &fakePropertiesRepo{byID: map[string]*models.Property{"p1": {ID: "p1", OwnerID: "owner-1"}}},
		i: &fakeImagesRepo{byID: map[string]*models.Image{}},
	}
}

func TestRequestUpload_Owner(t *testing.T) {
	stubPresign(t)
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := imageFixtures()
	s := NewImageService(db, rm, testS3Config())

	upload, err := s.RequestUpload(context.Background(), "owner-1", nil, "p1", "front view", 1)
	if err != nil {
		t.Fatalf("RequestUpload error: %v", err)
	}
	if upload.UploadURL == "" {
		t.Error("empty upload URL")
	}
	if upload.Image.Approved {
		t.Error("new upload must start unapproved")
	}
	if rm.i.created == nil || rm.i.created.PropertyID != "p1" || rm.i.created.UploaderID != "owner-1" {
		t.Errorf("created record = %+v", rm.i.created)
	}
}

func TestRequestUpload_Stranger(t *testing.T) {
	stubPresign(t)
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewImageService(db, imageFixtures(), testS3Config())

	_, err := s.RequestUpload(context.Background(), "stranger", nil, "p1", "", 0)
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("want ErrorForbidden, got %v", err)
	}
}

func TestGetDownloadURL_Visibility(t *testing.T) {
	stubPresign(t)
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := imageFixtures()
	rm.i.byID["img-pending"] = &models.Image{ID: "img-pending", PropertyID: "p1", UploaderID: "owner-1", StorageKey: "k1"}
	rm.i.byID["img-public"] = &models.Image{ID: "img-public", PropertyID: "p1", UploaderID: "owner-1", StorageKey: "k2", Approved: true}
	s := NewImageService(db, rm, testS3Config())

	if _, err := s.GetDownloadURL(context.Background(), "stranger", nil, "img-public"); err != nil {
		t.Fatalf("approved image must be public: %v", err)
	}
	if _, err := s.GetDownloadURL(context.Background(), "stranger", nil, "img-pending"); !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("pending image for stranger: want ErrorForbidden, got %v", err)
	}
	url, err := s.GetDownloadURL(context.Background(), "owner-1", nil, "img-pending")
	if err != nil {
		t.Fatalf("pending image for uploader: %v", err)
	}
	if url != "https://s3.test/get/k1" {
		t.Errorf("url = %q", url)
	}
	if _, err := s.GetDownloadURL(context.Background(), "mod", []string{AdminRole}, "img-pending"); err != nil {
		t.Fatalf("pending image for admin: %v", err)
	}
}

func TestListForProperty_FiltersUnapproved(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := imageFixtures()
	rm.i.listOut = []*models.Image{
		{ID: "a", Approved: true},
		{ID: "b"},
	}
	s := NewImageService(db, rm, testS3Config())

	public, err := s.ListForProperty(context.Background(), "stranger", nil, "p1")
	if err != nil {
		t.Fatalf("ListForProperty error: %v", err)
	}
	if len(public) != 1 || public[0].ID != "a" {
		t.Errorf("stranger sees %d images", len(public))
	}

	all, err := s.ListForProperty(context.Background(), "owner-1", nil, "p1")
	if err != nil {
		t.Fatalf("ListForProperty error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("owner sees %d images, want 2", len(all))
	}
}

func TestListMine_IncludesUnapproved(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := imageFixtures()
	rm.i.listOut = []*models.Image{
		{ID: "a", UploaderID: "u1", Approved: true},
		{ID: "b", UploaderID: "u1"},
	}
	s := NewImageService(db, rm, testS3Config())

	mine, err := s.ListMine(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListMine error: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("got %d images, want 2", len(mine))
	}
}

func TestApprove_AdminOnly(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := imageFixtures()
	s := NewImageService(db, rm, testS3Config())

	if err := s.Approve(context.Background(), []string{"user"}, "img1"); !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("non-admin approve: want ErrorForbidden, got %v", err)
	}
	if err := s.Approve(context.Background(), []string{AdminRole}, "img1"); err != nil {
		t.Fatalf("admin approve error: %v", err)
	}
	if rm.i.approvedID != "img1" {
		t.Errorf("approved id = %q", rm.i.approvedID)
	}
}

func TestImageDelete_Permissions(t *testing.T) {
	cases := []struct {
		name    string
		actor   string
		roles   []string
		wantErr error
	}{
		{"uploader", "uploader-1", nil, nil},
		{"listing owner", "owner-1", nil, nil},
		{"admin", "mod", []string{AdminRole}, nil},
		{"stranger", "stranger", nil, common.ErrorForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			defer db.Close()
			mock.ExpectBegin()
			if tc.wantErr == nil {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			rm := imageFixtures()
			rm.i.byID["img1"] = &models.Image{ID: "img1", PropertyID: "p1", UploaderID: "uploader-1"}
			s := NewImageService(db, rm, testS3Config())

			err := s.Delete(context.Background(), tc.actor, tc.roles, "img1")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Delete error: %v", err)
			}
			if rm.i.deletedID != "img1" {
				t.Errorf("deleted id = %q", rm.i.deletedID)
			}
		})
	}
}

func TestGetRandomStorageKey_Format(t *testing.T) {
	k := GetRandomStorageKey()
	// listings/YYYY/M/D/UUID
	re := regexp.MustCompile(`^listings/\d{4}/\d{1,2}/\d{1,2}/[0-9a-fA-F-]+$`)
	if !re.MatchString(k) {
		t.Fatalf("unexpected format: %q", k)
	}
}

func testS3Config() *sc.Config {
	return &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "x",
		S3RootPassword: "y",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "listings",
	}
}
