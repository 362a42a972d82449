package core

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"synergia-backend/lib/restyutil"
	"synergia-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("scrapers/synergia/core")

const (
	BaseURL   = "https://synergia.librus.pl"
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/47.0.2526.73 Safari/537.36"

	loginAction = "login"
)

// AuthEndpoints holds the three OAuth endpoints the login handshake
// walks through, in order.
type AuthEndpoints struct {
	Authorize string
	Login     string
	TwoFactor string
}

func DefaultAuthEndpoints() AuthEndpoints {
	return AuthEndpoints{
		Authorize: "https://api.librus.pl/OAuth/Authorization?client_id=46&response_type=code&scope=mydata",
		Login:     "https://api.librus.pl/OAuth/Authorization?client_id=46",
		TwoFactor: "https://api.librus.pl/OAuth/Authorization/2FA?client_id=46",
	}
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
	Auth    AuthEndpoints
}

type ClientOptions struct {
	// defaults to BaseURL
	BaseUrl string
	// defaults to DefaultAuthEndpoints()
	Auth AuthEndpoints
	// cookies to seed the session with, set on the base domain
	Cookies map[string]string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = BaseURL
	}
	if opts.Auth == (AuthEndpoints{}) {
		opts.Auth = DefaultAuthEndpoints()
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(redirectHosts(baseUrl, opts.Auth)...))
	client.SetTimeout(time.Second * 30)

	if len(opts.Cookies) > 0 {
		cookies := make([]*http.Cookie, 0, len(opts.Cookies))
		for name, value := range opts.Cookies {
			cookies = append(cookies, &http.Cookie{Name: name, Value: value})
		}
		jar.SetCookies(baseUrl, cookies)
	}

	telemetry.InstrumentResty(client, "scrapers/synergia/http")

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
		Auth:    opts.Auth,
	}
	return c, nil
}

// the handshake bounces between the API origin and the portal origin
func redirectHosts(baseUrl *url.URL, auth AuthEndpoints) []string {
	hosts := []string{baseUrl.Hostname()}
	for _, endpoint := range []string{auth.Authorize, auth.Login, auth.TwoFactor} {
		u, err := url.Parse(endpoint)
		if err != nil {
			continue
		}
		host := u.Hostname()
		if host != "" && host != hosts[0] {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

// SetDebugOutput dumps every request/response pair through the given
// output, useful when the portal markup shifts underneath the scrapers.
func (c *Client) SetDebugOutput(output restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.Http, tracer, output)
}

// Authorize performs the fixed three-step login handshake: prime the
// authorization endpoint, post credentials, then fetch the two-factor
// confirmation page whose cookies form the authenticated session.
// There are no retries; any failure along the way surfaces as
// ErrAuthenticationFailed.
func (c *Client) Authorize(ctx context.Context, login, password string) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:Authorize")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.Auth.Authorize)
	if err := checkStep(span, res, err, "authorization page"); err != nil {
		return nil, err
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"action": loginAction,
			"login":  login,
			"pass":   password,
		}).
		Post(c.Auth.Login)
	if err := checkStep(span, res, err, "credential submit"); err != nil {
		return nil, err
	}

	res, err = c.Http.R().
		SetContext(ctx).
		Get(c.Auth.TwoFactor)
	if err := checkStep(span, res, err, "two-factor confirmation"); err != nil {
		return nil, err
	}

	cookies := map[string]string{}
	for _, cookie := range res.Cookies() {
		cookies[cookie.Name] = cookie.Value
	}
	return cookies, nil
}

func checkStep(span trace.Span, res *resty.Response, err error, step string) error {
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("failed to fetch %s", step))
		slog.Error("authorization step failed", "step", step, "err", err)
		return fmt.Errorf("%w: %s: %v", ErrAuthenticationFailed, step, err)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, fmt.Sprintf("bad status on %s", step))
		slog.Error("authorization step failed", "step", step, "status", res.StatusCode())
		return fmt.Errorf("%w: %s: status %d", ErrAuthenticationFailed, step, res.StatusCode())
	}
	return nil
}

// Request performs a single portal request. Relative paths resolve
// against the base origin; a non-nil form turns the request into a form
// post. Network errors and non-2xx statuses are logged and wrapped as
// ErrTransportFailed, callers must not touch the response afterwards.
func (c *Client) Request(ctx context.Context, method, pathOrUrl string, form map[string]string) (*resty.Response, error) {
	req := c.Http.R().SetContext(ctx)
	if form != nil {
		req.SetFormData(form)
	}

	res, err := req.Execute(method, pathOrUrl)
	if err != nil {
		slog.ErrorContext(ctx, "portal request failed", "method", method, "url", pathOrUrl, "err", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransportFailed, method, pathOrUrl, err)
	}
	if res.IsError() {
		slog.ErrorContext(ctx, "portal request rejected",
			"method", method, "url", pathOrUrl, "status", res.StatusCode())
		return nil, fmt.Errorf("%w: %s %s: status %d", ErrTransportFailed, method, pathOrUrl, res.StatusCode())
	}
	return res, nil
}

// RequestDocument is Request plus parsing the body into a DOM document.
func (c *Client) RequestDocument(ctx context.Context, method, pathOrUrl string, form map[string]string) (*goquery.Document, error) {
	res, err := c.Request(ctx, method, pathOrUrl, form)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrTransportFailed, err)
	}
	return doc, nil
}

// GetFile fetches a file download with redirects disabled. The portal
// answers file requests with a redirect into its file host; only a
// redirect whose target contains "GetFile" is followed, anything else
// means the file is not available.
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:GetFile")
	defer span.End()

	target := path
	if !strings.HasPrefix(path, "https://") {
		ref, err := url.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("%w: parse path: %v", ErrTransportFailed, err)
		}
		target = c.BaseUrl.ResolveReference(ref).String()
	}

	httpClient := &http.Client{
		Transport: c.Http.GetClient().Transport,
		Jar:       c.Http.GetClient().Jar,
		Timeout:   time.Second * 30,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportFailed, err)
	}
	req.Header.Set("user-agent", userAgent)

	res, err := httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch file")
		return nil, fmt.Errorf("%w: %v", ErrTransportFailed, err)
	}
	defer res.Body.Close()

	location := res.Header.Get("Location")
	if location == "" || !strings.Contains(location, "GetFile") {
		slog.WarnContext(ctx, "file request did not redirect to a download", "path", path, "location", location)
		return nil, fmt.Errorf("%w: no download redirect for %s", ErrTransportFailed, path)
	}

	fileRes, err := c.Http.R().
		SetContext(ctx).
		Get(location)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch redirected file")
		return nil, fmt.Errorf("%w: %v", ErrTransportFailed, err)
	}
	return fileRes.Body(), nil
}
