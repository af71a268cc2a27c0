// Package storage implements the providers that turn an authorized asset
// into a playable URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appstorage "github.com/scoutystream/scouty/internal/application/asset/storage"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/shared/config"
	"github.com/scoutystream/scouty/internal/shared/constants"
)

var ErrUploadsUnsupported = errors.New("storage provider does not accept uploads")

const uploadExpiry = time.Hour

func embedDescriptor(a *asset.Asset) (*appstorage.Descriptor, error) {
	if a.YouTubeID() == "" {
		return nil, fmt.Errorf("asset %d has no youtube id", a.ID())
	}
	return &appstorage.Descriptor{
		Provider:  "youtube",
		AssetID:   a.ID(),
		EmbedURL:  "https://www.youtube.com/embed/" + url.PathEscape(a.YouTubeID()),
		YouTubeID: a.YouTubeID(),
	}, nil
}

// MockProvider returns static URLs with an expiry hint.
type MockProvider struct {
	baseURL string
	expiry  time.Duration
	now     func() time.Time
}

func NewMockProvider(baseURL string, expiry time.Duration) *MockProvider {
	if expiry <= 0 {
		expiry = constants.ManifestExpirySeconds * time.Second
	}
	return &MockProvider{baseURL: strings.TrimRight(baseURL, "/"), expiry: expiry, now: time.Now}
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) GenerateAccessDescriptor(ctx context.Context, a *asset.Asset) (*appstorage.Descriptor, error) {
	if a.Provider() == asset.ProviderYouTube {
		return embedDescriptor(a)
	}
	expires := p.now().Add(p.expiry).Unix()
	return &appstorage.Descriptor{
		Provider:    p.Name(),
		AssetID:     a.ID(),
		ManifestURL: fmt.Sprintf("%s/hls/%d/playlist.m3u8?expires=%d", p.baseURL, a.ID(), expires),
		ExpiresIn:   int(p.expiry.Seconds()),
	}, nil
}

func (p *MockProvider) GenerateUploadURL(ctx context.Context, assetID uint64, fileName string) (*appstorage.UploadTarget, error) {
	expires := p.now().Add(uploadExpiry).Unix()
	return &appstorage.UploadTarget{
		UploadURL: fmt.Sprintf("%s/upload/%d/%s?expires=%d", p.baseURL, assetID, url.PathEscape(path.Base(fileName)), expires),
		ExpiresIn: int(uploadExpiry.Seconds()),
	}, nil
}

// SignedProvider issues URLs carrying an HS256 token bound to one asset and
// one scope. The CDN edge validates the token with the shared secret.
type SignedProvider struct {
	baseURL string
	secret  []byte
	expiry  time.Duration
	now     func() time.Time
}

type URLClaims struct {
	AssetID uint64 `json:"aid"`
	Scope   string `json:"scope"`
	jwt.RegisteredClaims
}

const (
	ScopeStream = "stream"
	ScopeUpload = "upload"
)

func NewSignedProvider(baseURL, secret string, expiry time.Duration) (*SignedProvider, error) {
	if secret == "" {
		return nil, errors.New("signed storage requires a signing secret")
	}
	if expiry <= 0 {
		expiry = constants.ManifestExpirySeconds * time.Second
	}
	return &SignedProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		expiry:  expiry,
		now:     time.Now,
	}, nil
}

func (p *SignedProvider) Name() string { return "signed" }

func (p *SignedProvider) sign(assetID uint64, scope string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := URLClaims{
		AssetID: assetID,
		Scope:   scope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *SignedProvider) GenerateAccessDescriptor(ctx context.Context, a *asset.Asset) (*appstorage.Descriptor, error) {
	if a.Provider() == asset.ProviderYouTube {
		return embedDescriptor(a)
	}
	token, err := p.sign(a.ID(), ScopeStream, p.expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign manifest url: %w", err)
	}
	return &appstorage.Descriptor{
		Provider:    p.Name(),
		AssetID:     a.ID(),
		ManifestURL: fmt.Sprintf("%s/hls/%d/playlist.m3u8?token=%s", p.baseURL, a.ID(), url.QueryEscape(token)),
		ExpiresIn:   int(p.expiry.Seconds()),
	}, nil
}

func (p *SignedProvider) GenerateUploadURL(ctx context.Context, assetID uint64, fileName string) (*appstorage.UploadTarget, error) {
	token, err := p.sign(assetID, ScopeUpload, uploadExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload url: %w", err)
	}
	return &appstorage.UploadTarget{
		UploadURL: fmt.Sprintf("%s/upload/%d/%s?token=%s", p.baseURL, assetID, url.PathEscape(path.Base(fileName)), url.QueryEscape(token)),
		ExpiresIn: int(uploadExpiry.Seconds()),
	}, nil
}

// ParseToken validates a token issued by this provider.
func (p *SignedProvider) ParseToken(raw string) (*URLClaims, error) {
	claims := &URLClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// YouTubeProvider serves assets hosted on YouTube as embeds.
type YouTubeProvider struct{}

func NewYouTubeProvider() *YouTubeProvider { return &YouTubeProvider{} }

func (p *YouTubeProvider) Name() string { return "youtube" }

func (p *YouTubeProvider) GenerateAccessDescriptor(ctx context.Context, a *asset.Asset) (*appstorage.Descriptor, error) {
	return embedDescriptor(a)
}

func (p *YouTubeProvider) GenerateUploadURL(ctx context.Context, assetID uint64, fileName string) (*appstorage.UploadTarget, error) {
	return nil, ErrUploadsUnsupported
}

// New returns the provider named by cfg.Provider.
func New(cfg config.StorageConfig) (appstorage.Provider, error) {
	switch cfg.Provider {
	case "mock", "":
		return NewMockProvider(cfg.BaseURL, cfg.URLExpiry), nil
	case "signed":
		return NewSignedProvider(cfg.BaseURL, cfg.SigningSecret, cfg.URLExpiry)
	case "youtube":
		return NewYouTubeProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
