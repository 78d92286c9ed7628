package mugshots

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// cloudinaryStore keeps photos in a Cloudinary folder, public id
// "mugshots/<recordID>". Selected when CLOUDINARY_URL is configured.
type cloudinaryStore struct {
	cld  *cloudinary.Cloudinary
	http *http.Client
}

// NewCloudinaryStore builds a Cloudinary-backed store from a
// CLOUDINARY_URL style connection string.
func NewCloudinaryStore(url string) (Store, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return &cloudinaryStore{cld: cld, http: http.DefaultClient}, nil
}

func publicID(recordID string) string {
	return "mugshots/" + recordID
}

func (s *cloudinaryStore) Put(ctx context.Context, recordID, contentType string, data []byte) error {
	_, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID(recordID),
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "image",
	})
	return err
}

func (s *cloudinaryStore) Get(ctx context.Context, recordID string) ([]byte, string, error) {
	img, err := s.cld.Image(publicID(recordID))
	if err != nil {
		return nil, "", err
	}
	url, err := img.String()
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", ErrNotFound
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (s *cloudinaryStore) Delete(ctx context.Context, recordID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID(recordID),
		Invalidate: api.Bool(true),
	})
	if err != nil {
		zap.S().Errorw("failed to destroy cloudinary asset",
			"recordId", recordID,
			"error", err)
	}
	return err
}
