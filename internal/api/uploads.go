package api

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/aviravastra/storefront/internal/apiclient"
)

// ImageField is the multipart field the upload endpoint reads
const ImageField = "image"

// maxParallelUploads bounds UploadImageFiles
const maxParallelUploads = 4

type UploadsAPI struct {
	client *apiclient.Client
}

// UploadImage sends one image as multipart/form-data and returns its hosted URL
func (u *UploadsAPI) UploadImage(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	form := apiclient.NewMultipart()
	if err := form.AddFile(ImageField, filename, r); err != nil {
		return nil, fmt.Errorf("building upload for %s: %w", filename, err)
	}

	var res UploadResult
	if err := u.client.Post(ctx, "/upload/image", form, &res); err != nil {
		return nil, err
	}
	if res.URL == "" {
		return nil, fmt.Errorf("upload of %s returned no url", filename)
	}
	return &res, nil
}

// UploadImageFiles uploads the files concurrently and returns their URLs in the order given.
// The first failure cancels the remaining uploads.
func (u *UploadsAPI) UploadImageFiles(ctx context.Context, paths []string) ([]string, error) {
	urls := make([]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)

	for i, path := range paths {
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer f.Close()

			res, err := u.UploadImage(ctx, filepath.Base(path), f)
			if err != nil {
				return err
			}
			urls[i] = res.URL
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
