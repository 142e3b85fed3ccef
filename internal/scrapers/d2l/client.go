// client.go contains the http plumbing shared by every d2l endpoint, the
// endpoints themselves live in their own files.

package d2l

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
	"valence/internal/components/assert"
	"valence/internal/components/chrono"
	"valence/internal/components/telemetry"
	"valence/internal/scrapers/d2l/parse"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_base_document = "client.base-document"
	report_client_timezone      = "client.timezone"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

const homePath = "/d2l/home"

type Options struct {
	BaseUrl string
	// Cookies are the session cookies of a logged in browser.
	Cookies   map[string]string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond defaults to 2.
	RequestsPerSecond float64
	// Timezone overrides the timezone advertised by the LMS.
	Timezone string
	Tokens   TokenStore
	Time     chrono.TimeAPI
	// Dump, when set, receives every http exchange for debugging.
	Dump telemetry.HttpDump
}

// Client talks to a single Brightspace origin on behalf of a logged in
// user.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
	Session *Session

	tel       telemetry.API
	timeout   time.Duration
	requestId atomic.Int64

	tzOverride string
	tzOnce     sync.Once
	tz         *time.Location
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.BaseUrl)

	tel = telemetry.NewScopedAPI("d2l_scraper", tel)

	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Time == nil {
		opts.Time = chrono.NewStandardTime()
	}
	if opts.Tokens == nil {
		opts.Tokens = NewMemoryTokenStore()
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	var cookies []*http.Cookie
	for name, value := range opts.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	jar.SetCookies(parsedBaseUrl, cookies)
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(opts.Timeout)

	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	if opts.Dump != nil {
		telemetry.DumpResty(httpClient, opts.Dump)
	}

	c := &Client{
		BaseUrl:    parsedBaseUrl,
		Http:       httpClient,
		tel:        tel,
		timeout:    opts.Timeout,
		tzOverride: opts.Timezone,
	}
	c.Session = newSession(c, opts.Tokens, opts.Time, tel)
	return c, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// execute runs the request, turning deadline errors into *TimeoutError and
// error statuses into *StatusError.
func (c *Client) execute(req *resty.Request, method, target string) (*resty.Response, error) {
	res, err := req.Execute(method, target)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Method: method, Url: target, After: c.timeout}
		}
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	if res.IsError() {
		return nil, &StatusError{
			Method:     method,
			Url:        target,
			StatusCode: res.StatusCode(),
			Status:     res.Status(),
		}
	}
	return res, nil
}

func (c *Client) get(ctx context.Context, target string) (*resty.Response, error) {
	return c.execute(c.Http.R().SetContext(ctx), http.MethodGet, target)
}

// getAuthorized makes a bearer authenticated GET, refreshing the token and
// retrying once when the api rejects it.
func (c *Client) getAuthorized(ctx context.Context, target string) (*resty.Response, error) {
	token, err := c.Session.Token(ctx, false)
	if err != nil {
		return nil, err
	}
	res, err := c.execute(c.Http.R().SetContext(ctx).SetAuthToken(token), http.MethodGet, target)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		return res, err
	}

	token, err = c.Session.Token(ctx, true)
	if err != nil {
		return nil, err
	}
	return c.execute(c.Http.R().SetContext(ctx).SetAuthToken(token), http.MethodGet, target)
}

// BaseDocument fetches the html of the LMS home page.
func (c *Client) BaseDocument(ctx context.Context) (string, error) {
	res, err := c.get(ctx, homePath)
	if err != nil {
		c.tel.ReportBroken(report_client_base_document, err)
		return "", err
	}
	return res.String(), nil
}

// Timezone returns the timezone the LMS formats its dates in. It is fetched
// once per client, failures fall back to chrono.DefaultLocation. The fetch
// ignores cancellation of ctx since its result is shared by every caller.
func (c *Client) Timezone(ctx context.Context) *time.Location {
	c.tzOnce.Do(func() {
		if c.tzOverride != "" {
			loc, err := time.LoadLocation(c.tzOverride)
			if err == nil {
				c.tz = loc
				return
			}
			c.tel.ReportWarning(report_client_timezone, fmt.Errorf("load override: %w", err), c.tzOverride)
		}

		c.tz = chrono.DefaultLocation()
		base, err := c.BaseDocument(context.WithoutCancel(ctx))
		if err != nil {
			c.tel.ReportWarning(report_client_timezone, fmt.Errorf("fallback to %s: %w", chrono.DefaultZone, err))
			return
		}
		loc, ok := parse.Timezone(base)
		if !ok {
			c.tel.ReportWarning(report_client_timezone, fmt.Errorf("no timezone in home document, fallback to %s", chrono.DefaultZone))
			return
		}
		c.tz = loc
	})
	return c.tz
}

// Resolve makes a link found in a page absolute.
func (c *Client) Resolve(link string) string {
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return c.BaseUrl.ResolveReference(ref).String()
}

func (c *Client) nextRequestId() int64 {
	return c.requestId.Add(1)
}
