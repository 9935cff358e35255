package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/mfportal/internal/storage"
	"github.com/mfportal/internal/view"
)

// ErrAssetNotFound is returned when no override, default file or theme resource matches.
var ErrAssetNotFound = errors.New("brand asset not found")

// BrandAsset identifies one of the fixed logo variants.
type BrandAsset int

const (
	AssetLogo BrandAsset = iota + 1
	AssetLogoSide
	AssetLogoDark
	AssetLogoDarkSide
)

// Name is the asset's file stem and route segment.
func (a BrandAsset) Name() string {
	switch a {
	case AssetLogo:
		return "logo"
	case AssetLogoSide:
		return "logo-side"
	case AssetLogoDark:
		return "logo-dark"
	case AssetLogoDarkSide:
		return "logo-dark-side"
	default:
		return ""
	}
}

// BrandImage is an open image stream with its metadata.
type BrandImage struct {
	Content  storage.Object
	Size     int64
	MIMEType string
	FileName string
}

// BrandImageSource supplies administrator uploaded brand images. A nil image with a
// nil error means there is no override.
type BrandImageSource interface {
	BrandImage(ctx context.Context, name string) (*BrandImage, error)
}

// AssetResultKind tells the caller how to answer.
type AssetResultKind int

const (
	// AssetServe means Image holds the bytes to stream.
	AssetServe AssetResultKind = iota + 1
	// AssetRedirect means the client should be sent to RedirectURL.
	AssetRedirect
)

// AssetResult is the outcome of resolving a brand asset.
type AssetResult struct {
	Kind        AssetResultKind
	Image       *BrandImage
	RedirectURL string
}

var defaultAssetExtensions = []string{".png", ".svg", ".jpg"}

// BrandingService resolves logos and theme images.
type BrandingService struct {
	overrides   BrandImageSource
	webRoot     storage.Storage
	defaultPath string
	theme       view.Theme
}

// NewBrandingService 构造 BrandingService。webRoot 中的 defaultPath 目录存放默认 logo。
func NewBrandingService(overrides BrandImageSource, webRoot storage.Storage, defaultPath string, theme view.Theme) *BrandingService {
	if strings.TrimSpace(defaultPath) == "" {
		defaultPath = view.DefaultBrandingPath
	}
	return &BrandingService{
		overrides:   overrides,
		webRoot:     webRoot,
		defaultPath: strings.Trim(defaultPath, "/"),
		theme:       theme,
	}
}

// Resolve finds the image for a logo variant: an override first, then the default
// png, svg and jpg files in that order.
func (s *BrandingService) Resolve(ctx context.Context, asset BrandAsset) (*AssetResult, error) {
	name := asset.Name()
	if name == "" {
		return nil, ErrAssetNotFound
	}

	img, err := s.override(ctx, name)
	if err != nil {
		return nil, err
	}
	if img != nil {
		return &AssetResult{Kind: AssetServe, Image: img}, nil
	}

	for _, ext := range defaultAssetExtensions {
		img, err := openImage(s.webRoot, path.Join(s.defaultPath, name+ext))
		if err != nil {
			return nil, err
		}
		if img != nil {
			return &AssetResult{Kind: AssetServe, Image: img}, nil
		}
	}

	return nil, ErrAssetNotFound
}

// ResolveResource finds a named theme resource. An override is served directly,
// otherwise the client is redirected to the theme's own path.
func (s *BrandingService) ResolveResource(ctx context.Context, file string) (*AssetResult, error) {
	res, ok := s.theme.Resource(file)
	if !ok {
		return nil, ErrAssetNotFound
	}

	img, err := s.override(ctx, res.Name)
	if err != nil {
		return nil, err
	}
	if img != nil {
		return &AssetResult{Kind: AssetServe, Image: img}, nil
	}

	return &AssetResult{Kind: AssetRedirect, RedirectURL: res.Path}, nil
}

func (s *BrandingService) override(ctx context.Context, name string) (*BrandImage, error) {
	if s.overrides == nil {
		return nil, nil
	}
	img, err := s.overrides.BrandImage(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load brand override %s: %w", name, err)
	}
	if img == nil || img.Size <= 0 {
		if img != nil && img.Content != nil {
			img.Content.Close()
		}
		return nil, nil
	}
	return img, nil
}

// openImage returns nil without error when the object does not exist.
func openImage(store storage.Storage, name string) (*BrandImage, error) {
	if store == nil {
		return nil, nil
	}
	obj, err := store.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrInvalidPath) {
			return nil, nil
		}
		return nil, fmt.Errorf("open brand image %s: %w", name, err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat brand image %s: %w", name, err)
	}
	if info.IsDir() {
		obj.Close()
		return nil, nil
	}
	return &BrandImage{
		Content:  obj,
		Size:     info.Size(),
		MIMEType: MimeTypeForName(name),
		FileName: path.Base(name),
	}, nil
}

// StorageBrandSource keeps brand overrides in blob storage under a prefix, one
// file per asset name with any supported image extension.
type StorageBrandSource struct {
	store  storage.Storage
	prefix string
}

var _ BrandImageSource = (*StorageBrandSource)(nil)

var overrideExtensions = []string{".png", ".svg", ".jpg", ".jpeg", ".webp", ".gif", ".ico"}

// NewStorageBrandSource 构造 StorageBrandSource，prefix 为空时使用 brand。
func NewStorageBrandSource(store storage.Storage, prefix string) *StorageBrandSource {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "brand"
	}
	return &StorageBrandSource{store: store, prefix: prefix}
}

// BrandImage implements BrandImageSource.
func (s *StorageBrandSource) BrandImage(_ context.Context, name string) (*BrandImage, error) {
	stem := strings.ToLower(strings.TrimSpace(name))
	if stem == "" || strings.ContainsAny(stem, "/\\") {
		return nil, nil
	}
	for _, ext := range overrideExtensions {
		img, err := openImage(s.store, path.Join(s.prefix, stem+ext))
		if err != nil {
			return nil, err
		}
		if img != nil {
			return img, nil
		}
	}
	return nil, nil
}

// Save stores an override, replacing any existing file for the same name.
func (s *StorageBrandSource) Save(_ context.Context, name, ext string, r io.Reader) error {
	stem := strings.ToLower(strings.TrimSpace(name))
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if stem == "" || strings.ContainsAny(stem, "/\\") {
		return fmt.Errorf("%w: %q", storage.ErrInvalidPath, name)
	}

	if !slices.Contains(overrideExtensions, ext) {
		return fmt.Errorf("unsupported brand image extension %q", ext)
	}
	for _, candidate := range overrideExtensions {
		if candidate == ext {
			continue
		}
		existing := path.Join(s.prefix, stem+candidate)
		if ok, _ := s.store.Exists(existing); ok {
			if err := s.store.Delete(existing); err != nil {
				return fmt.Errorf("replace brand override %s: %w", name, err)
			}
		}
	}

	if _, err := s.store.Put(path.Join(s.prefix, stem+ext), r); err != nil {
		return fmt.Errorf("save brand override %s: %w", name, err)
	}
	return nil
}
