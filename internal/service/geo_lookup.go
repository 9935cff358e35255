package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mfportal/internal/logger"
	"github.com/mfportal/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// IPLocation is the coarse location of a client address.
type IPLocation struct {
	IP        string
	City      string
	Region    string
	Country   string
	Continent string
}

// IPLookup resolves a client address. host is the site host the request came in on.
type IPLookup interface {
	Lookup(ctx context.Context, ip, host string) (IPLocation, error)
}

// ErrNonPublicIP is returned for loopback, private and otherwise unroutable addresses.
var ErrNonPublicIP = errors.New("ip address is not publicly routable")

// HTTPIPLookup queries an ip-api.com compatible endpoint behind a circuit breaker.
type HTTPIPLookup struct {
	client  *http.Client
	baseURL string
	cb      *gobreaker.CircuitBreaker[IPLocation]
}

type ipAPIResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Continent  string `json:"continent"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
	Query      string `json:"query"`
}

// NewHTTPIPLookup builds a lookup client. The breaker opens after five consecutive
// failures and probes again after thirty seconds.
func NewHTTPIPLookup(baseURL string, timeout time.Duration) *HTTPIPLookup {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker[IPLocation](gobreaker.Settings{
		Name:        "ip-geolocation",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.L().Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &HTTPIPLookup{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		cb:      cb,
	}
}

// SetHTTPClient 替换 HTTP 客户端，主要面向测试场景。
func (p *HTTPIPLookup) SetHTTPClient(client *http.Client) {
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	p.client = client
}

// Lookup implements IPLookup.
func (p *HTTPIPLookup) Lookup(ctx context.Context, ip, _ string) (IPLocation, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return IPLocation{IP: ip}, fmt.Errorf("invalid ip address %q: %w", ip, err)
	}
	addr = addr.Unmap()
	if !isPublicAddr(addr) {
		return IPLocation{IP: ip}, ErrNonPublicIP
	}

	loc, err := p.cb.Execute(func() (IPLocation, error) {
		return p.query(ctx, addr.String())
	})
	if err != nil {
		return IPLocation{IP: ip}, err
	}
	loc.IP = ip
	return loc, nil
}

func (p *HTTPIPLookup) query(ctx context.Context, ip string) (IPLocation, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=status,message,continent,country,regionName,city,query", p.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return IPLocation{}, fmt.Errorf("build geolocation request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return IPLocation{}, fmt.Errorf("query geolocation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return IPLocation{}, fmt.Errorf("geolocation returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return IPLocation{}, fmt.Errorf("decode geolocation response: %w", err)
	}
	if result.Status != "success" {
		return IPLocation{}, fmt.Errorf("geolocation lookup failed: %s", result.Message)
	}

	return IPLocation{
		City:      result.City,
		Region:    result.RegionName,
		Country:   result.Country,
		Continent: result.Continent,
	}, nil
}

func isPublicAddr(addr netip.Addr) bool {
	return addr.IsValid() &&
		!addr.IsUnspecified() &&
		!addr.IsLoopback() &&
		!addr.IsPrivate() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsMulticast()
}

// GracefulIPLookup never fails: any lookup error is logged and yields a location
// carrying only the address.
type GracefulIPLookup struct {
	next IPLookup
}

// NewGracefulIPLookup wraps next. A nil next skips lookups entirely.
func NewGracefulIPLookup(next IPLookup) *GracefulIPLookup {
	return &GracefulIPLookup{next: next}
}

// Lookup implements IPLookup.
func (g *GracefulIPLookup) Lookup(ctx context.Context, ip, host string) (IPLocation, error) {
	if g.next == nil {
		metrics.GeoLookups.WithLabelValues("skipped").Inc()
		return IPLocation{IP: ip}, nil
	}

	loc, err := g.next.Lookup(ctx, ip, host)
	switch {
	case err == nil:
		metrics.GeoLookups.WithLabelValues("success").Inc()
		loc.IP = ip
		return loc, nil
	case errors.Is(err, ErrNonPublicIP):
		metrics.GeoLookups.WithLabelValues("skipped").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.GeoLookups.WithLabelValues("rejected").Inc()
		logger.FromContext(ctx).Warn("ip geolocation unavailable", zap.String("ip", ip), zap.Error(err))
	default:
		metrics.GeoLookups.WithLabelValues("failure").Inc()
		logger.FromContext(ctx).Warn("ip geolocation failed", zap.String("ip", ip), zap.String("host", host), zap.Error(err))
	}
	return IPLocation{IP: ip}, nil
}
