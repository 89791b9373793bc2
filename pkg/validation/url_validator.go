package validation

import (
	"net/url"
	"strings"

	apperrors "go-skin-inspector/internal/errors"
)

const (
	maxPhotoURLLength = 2048

	// BlobHostSuffix identifies Azure Blob Storage endpoints
	BlobHostSuffix = ".blob.core.windows.net"
)

// URLValidator checks photo URLs before they are fetched
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator accepts any http or https host
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// NewURLValidatorWithOptions restricts schemes and hosts. A host entry
// starting with "." matches any subdomain.
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidatePhotoURL validates a URL pointing at a facial photo
func (v *URLValidator) ValidatePhotoURL(photoURL string) error {
	photoURL = strings.TrimSpace(photoURL)
	if photoURL == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}
	if len(photoURL) > maxPhotoURLLength {
		return apperrors.NewValidationError("URL is too long", nil)
	}

	parsedURL, err := url.Parse(photoURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}
	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}
	if parsedURL.Hostname() == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}
	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}
	return nil
}

// IsBlobStorageURL reports whether the URL points at Azure Blob Storage
func IsBlobStorageURL(rawURL string) bool {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return parsedURL.Scheme == "https" && strings.HasSuffix(strings.ToLower(parsedURL.Hostname()), BlobHostSuffix)
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	scheme = strings.ToLower(scheme)
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed is true for every host when no restriction is set
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, allowed := range v.allowedHosts {
		if strings.HasPrefix(allowed, ".") && strings.HasSuffix(host, allowed) {
			return true
		}
		if host == allowed {
			return true
		}
	}
	return false
}
