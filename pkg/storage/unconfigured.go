package storage

import (
	"context"

	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

// unconfiguredClient stands in when no storage credentials were provided.
// Uploads fail with a misconfiguration error instead of a nil dereference.
type unconfiguredClient struct{}

// Unconfigured returns a client that rejects every upload
func Unconfigured() ClientInterface {
	return unconfiguredClient{}
}

func (unconfiguredClient) UploadImage(_ context.Context, _, _, _ string) (string, error) {
	return "", apperrors.MisconfiguredError("object storage credentials")
}

func (unconfiguredClient) GenerateFileName(studentID, _ string) string {
	return "avatars/" + studentID
}

func (unconfiguredClient) ValidateImageType(_ string) error {
	return apperrors.MisconfiguredError("object storage credentials")
}

func (unconfiguredClient) ValidateImageSize(_ string) error {
	return apperrors.MisconfiguredError("object storage credentials")
}
