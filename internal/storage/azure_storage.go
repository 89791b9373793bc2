package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

const blobHostSuffix = ".blob.core.windows.net"

// BlobLocation identifies a blob inside a storage account
type BlobLocation struct {
	Account   string
	Container string
	Blob      string
}

// ParseBlobURL splits https://<account>.blob.core.windows.net/<container>/<blob>
func ParseBlobURL(blobURL string) (BlobLocation, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(blobURL))
	if err != nil {
		return BlobLocation{}, fmt.Errorf("invalid blob URL: %w", err)
	}

	host := strings.ToLower(parsedURL.Hostname())
	account, ok := strings.CutSuffix(host, blobHostSuffix)
	if !ok || account == "" || strings.Contains(account, ".") {
		return BlobLocation{}, fmt.Errorf("invalid blob URL: host %q is not a blob endpoint", parsedURL.Host)
	}

	container, blob, ok := strings.Cut(strings.TrimPrefix(parsedURL.Path, "/"), "/")
	if !ok || container == "" || blob == "" {
		return BlobLocation{}, fmt.Errorf("invalid blob URL: path must be /<container>/<blob>")
	}

	return BlobLocation{Account: account, Container: container, Blob: blob}, nil
}

// BlobFetcher downloads photos from one storage account
type BlobFetcher interface {
	PhotoFetcher
	Account() string
}

type azureBlobFetcher struct {
	client   *azblob.Client
	account  string
	maxBytes int64
}

// NewAzureBlobFetcher authenticates against accountName with a shared key
func NewAzureBlobFetcher(accountName, accountKey string, maxBytes int64) (BlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s%s", accountName, blobHostSuffix),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	if maxBytes <= 0 {
		maxBytes = DefaultHTTPFetcherOptions().MaxBytes
	}
	return &azureBlobFetcher{
		client:   client,
		account:  strings.ToLower(accountName),
		maxBytes: maxBytes,
	}, nil
}

func (s *azureBlobFetcher) Account() string {
	return s.account
}

func (s *azureBlobFetcher) FetchPhoto(ctx context.Context, blobURL string) ([]byte, error) {
	loc, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}
	if loc.Account != s.account {
		return nil, fmt.Errorf("blob account %q does not match configured account %q", loc.Account, s.account)
	}

	resp, err := s.client.DownloadStream(ctx, loc.Container, loc.Blob, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrPhotoNotFound, loc.Container, loc.Blob)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.ContentLength != nil && *resp.ContentLength > s.maxBytes {
		return nil, ErrPhotoTooLarge
	}
	return readLimited(resp.Body, s.maxBytes)
}
