package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"storybook-server/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// MediaStream открытый поток удаленного ресурса. Body закрывает вызывающий.
type MediaStream struct {
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}

// MediaFetcher загружает изображения и аудио с внешних хостов.
//
//go:generate mockery --name MediaFetcher --output ../mocks --outpkg mocks --case=underscore
type MediaFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*MediaStream, error)
}

// MediaProxyConfig настройки загрузчика медиа.
type MediaProxyConfig struct {
	Timeout           time.Duration
	// AllowPrivateHosts отключает запрет на loopback/частные адреса (локальная разработка).
	AllowPrivateHosts bool
}

type mediaProxy struct {
	http   *resty.Client
	logger *zap.Logger
}

var errBlockedAddress = errors.New("address is not publicly routable")

// Диапазоны, которые IsGlobalUnicast/IsPrivate не покрывают.
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("64:ff9b::/96"),
}

// NewMediaProxy создает загрузчик медиа. Без AllowPrivateHosts соединения
// проверяются после DNS-резолва, поэтому прокси не ходит во внутреннюю сеть.
func NewMediaProxy(cfg MediaProxyConfig, logger *zap.Logger) MediaFetcher {
	client := resty.New().SetTimeout(cfg.Timeout)
	if !cfg.AllowPrivateHosts {
		client.SetTransport(publicOnlyTransport())
	}
	return &mediaProxy{
		http:   client,
		logger: logger.Named("MediaProxy"),
	}
}

func publicOnlyTransport() *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// через HTTP_PROXY проверка адреса теряет смысл
	transport.Proxy = nil
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   rejectNonPublic,
	}
	transport.DialContext = dialer.DialContext
	return transport
}

// rejectNonPublic вызывается для каждого адреса перед connect, включая редиректы.
func rejectNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", errBlockedAddress, address)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || !isPublicAddr(addr) {
		return fmt.Errorf("%w: %s", errBlockedAddress, host)
	}
	return nil
}

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return false
	}
	for _, prefix := range blockedPrefixes {
		if prefix.Contains(addr) {
			return false
		}
	}
	return true
}

// ValidateMediaURL принимает только абсолютные http(s) URL.
func ValidateMediaURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return models.NewValidationError("url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return models.NewValidationError("url must be an absolute http(s) URL")
	}
	return nil
}

// IsProxiableContentType проверяет, что ресурс является изображением или аудио.
func IsProxiableContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "audio/")
}

func (p *mediaProxy) Fetch(ctx context.Context, rawURL string) (stream *MediaStream, err error) {
	if err := ValidateMediaURL(rawURL); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { observe("media", "fetch", start, err) }()

	resp, err := p.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		if errors.Is(err, errBlockedAddress) {
			p.logger.Warn("Blocked media fetch to non-public address", zap.String("url", rawURL), zap.Error(err))
			return nil, models.NewValidationError("url host is not allowed")
		}
		return nil, fmt.Errorf("%w: %v", models.ErrUpstreamFetch, err)
	}
	body := resp.RawBody()
	if resp.IsError() {
		body.Close()
		return nil, fmt.Errorf("%w: upstream returned status %d", models.ErrUpstreamFetch, resp.StatusCode())
	}
	contentType := resp.Header().Get("Content-Type")
	if !IsProxiableContentType(contentType) {
		body.Close()
		p.logger.Debug("Rejected media type", zap.String("url", rawURL), zap.String("contentType", contentType))
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedMedia, contentType)
	}
	return &MediaStream{
		ContentType:   contentType,
		ContentLength: resp.RawResponse.ContentLength,
		Body:          body,
	}, nil
}
