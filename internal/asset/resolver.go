package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"syscall"
	"time"

	"github.com/disintegration/imaging"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/raster"
)

const fetchTimeout = 15 * time.Second

// ErrBlockedAddress is returned for remote references that resolve to a
// loopback, private, link-local or otherwise non-public address.
var ErrBlockedAddress = errors.New("address not allowed")

// Resolver loads the external data a document points at: it attaches
// decoded images to image layers and registers font resources.
type Resolver struct {
	store  *Store
	client *http.Client
	fonts  *raster.FontRegistry
}

// NewResolver creates a resolver. A nil store disables stored assets; a
// nil registry means raster.DefaultFonts.
func NewResolver(store *Store, fonts *raster.FontRegistry) *Resolver {
	if fonts == nil {
		fonts = raster.DefaultFonts()
	}
	return &Resolver{
		store:  store,
		client: newFetchClient(publicOnly),
		fonts:  fonts,
	}
}

// AllowPrivateNetworks lets remote references reach any address. The
// command-line renderer uses it; the server does not.
func (r *Resolver) AllowPrivateNetworks() *Resolver {
	r.client = newFetchClient(nil)
	return r
}

// newFetchClient returns a client whose dialer runs check against every
// address it connects to, after DNS resolution and on each redirect.
// Proxies are not used so the check sees the real destination.
func newFetchClient(check func(network, address string, _ syscall.RawConn) error) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, Control: check}
	return &http.Client{
		Timeout: fetchTimeout,
		Transport: &http.Transport{
			Proxy:               nil,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConns:        8,
			IdleConnTimeout:     30 * time.Second,
		},
	}
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	ip = ip.Unmap()
	if !ip.IsGlobalUnicast() || ip.IsPrivate() || ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() || ip.IsUnspecified() || cgnat.Contains(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	return nil
}

var cgnat = netip.MustParsePrefix("100.64.0.0/10")

// Resolve returns doc with every resolvable image attached. Failures do
// not stop resolution; they are joined into the returned error and the
// affected layers render as placeholders.
func (r *Resolver) Resolve(ctx context.Context, doc *document.Document) (*document.Document, error) {
	var errs []error

	for _, res := range doc.Resources {
		if res.Kind != document.ResourceFont {
			continue
		}
		if err := r.registerFont(ctx, res); err != nil {
			errs = append(errs, fmt.Errorf("font %s: %w", res.ID, err))
		}
	}

	decoded := map[string]image.Image{}
	for _, id := range document.GetLayerOrder(doc, doc.RootFrameID) {
		l, ok := doc.LayersByID[id].(*document.ImageLayer)
		if !ok || l.ImageRef == "" || l.Element != nil {
			continue
		}
		img, ok := decoded[l.ImageRef]
		if !ok {
			var err error
			img, err = r.image(ctx, doc, l.ImageRef)
			if err != nil {
				errs = append(errs, fmt.Errorf("image layer %s: %w", id, err))
				continue
			}
			decoded[l.ImageRef] = img
		}
		doc = document.AttachImage(doc, id, img)
	}

	if err := errors.Join(errs...); err != nil {
		slog.Debug("unresolved resources", "error", err, "document", doc.ID)
		return doc, err
	}
	return doc, nil
}

func (r *Resolver) registerFont(ctx context.Context, res document.Resource) error {
	family := res.Family
	if family == "" {
		family = res.Name
	}
	data, err := r.fetch(ctx, res.URL)
	if err != nil {
		return err
	}
	return r.fonts.Register(family, false, false, data)
}

// image resolves ref, which is a resource id, an http(s) URL, a data URI
// or a stored asset URL.
func (r *Resolver) image(ctx context.Context, doc *document.Document, ref string) (image.Image, error) {
	src := ref
	if res, ok := doc.Resource(ref); ok {
		src = res.URL
	}
	data, err := r.fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}

func (r *Resolver) fetch(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return r.download(ctx, src)
	case r.store == nil:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, src)
	case strings.HasPrefix(src, "/assets/"):
		return r.store.OpenURL(src)
	default:
		return r.store.Open(src)
	}
}

func (r *Resolver) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(data) > maxUploadSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

// decodeDataURI accepts base64 data URIs only.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: data URI must be base64", ErrUnsupportedType)
	}
	return base64.StdEncoding.DecodeString(payload)
}
