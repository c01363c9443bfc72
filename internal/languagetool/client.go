package languagetool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"grammarcheck/internal/problem"
	"grammarcheck/internal/textutil"

	"github.com/rs/zerolog/log"
)

const (
	// Auto asks the server to detect the language (v2 API).
	Auto = "auto"
	// AutoDetect asks a legacy server to detect the language.
	AutoDetect = "autodetect"
)

// Response schemas.
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Request is one check of one text.
type Request struct {
	// Server is the check endpoint URL.
	Server string
	// Text is the submitted text.
	Text string
	// Language is a language tag, Auto or AutoDetect. Empty means Auto.
	Language string
	// DisabledRules are rule ids the server should not report.
	DisabledRules []string
	// Positioner maps XML (line, column) pairs to offsets in Text. When nil
	// a map of Text is used.
	Positioner Positioner
}

// Cache stores decoded matches by request key.
type Cache interface {
	Get(ctx context.Context, key string) ([]problem.Match, bool)
	Set(ctx context.Context, key string, matches []problem.Match) error
}

// Options configures a Client.
type Options struct {
	// Format forces a response schema; FormatAuto picks one per response.
	Format string
	// Method is POST (form body) or GET (query string).
	Method string
	// SplitReplacements is passed to the XML decoder.
	SplitReplacements bool
	// Timeout bounds a whole request. Zero means no timeout.
	Timeout time.Duration
	// Cache, when set, short-circuits identical requests.
	Cache Cache
}

// Client sends texts to a LanguageTool compatible server.
type Client struct {
	opts       Options
	httpClient *http.Client
	decoders   []Decoder
}

// NewClient creates a new check client.
func NewClient(opts Options) *Client {
	if opts.Format == "" {
		opts.Format = FormatAuto
	}
	if opts.Method == "" {
		opts.Method = http.MethodPost
	}
	opts.Method = strings.ToUpper(opts.Method)

	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		decoders: []Decoder{
			NewJSONDecoder(),
			NewXMLDecoder(opts.SplitReplacements),
		},
	}
}

// Check submits req.Text and returns the reported problems in server order.
// Errors are *Failure values.
func (c *Client) Check(ctx context.Context, req Request) ([]problem.Match, error) {
	var key string
	if c.opts.Cache != nil {
		key = c.cacheKey(req)
		if matches, ok := c.opts.Cache.Get(ctx, key); ok {
			log.Debug().Str("server", req.Server).Int("matches", len(matches)).Msg("Check served from cache")
			return matches, nil
		}
	}

	body, contentType, err := c.doRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	dec, err := c.decoderFor(contentType, body)
	if err != nil {
		return nil, malformed(req.Server, err)
	}

	matches, err := dec.Decode(body, req.Text, req.Positioner)
	if err != nil {
		log.Debug().Str("body", textutil.Truncate(string(body), 200)).Msg("Undecodable check response")
		return nil, malformed(req.Server, fmt.Errorf("%s schema: %w", dec.Name(), err))
	}

	log.Info().
		Str("server", req.Server).
		Str("schema", dec.Name()).
		Int("matches", len(matches)).
		Msg("Check complete")

	if c.opts.Cache != nil {
		if err := c.opts.Cache.Set(ctx, key, matches); err != nil {
			log.Warn().Err(err).Msg("Failed to cache check response")
		}
	}
	return matches, nil
}

func (c *Client) doRequest(ctx context.Context, req Request) ([]byte, string, error) {
	form := formValues(req)

	var (
		httpReq *http.Request
		err     error
	)
	if c.opts.Method == http.MethodGet {
		target := req.Server
		if strings.Contains(target, "?") {
			target += "&" + form.Encode()
		} else {
			target += "?" + form.Encode()
		}
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, c.opts.Method, req.Server, strings.NewReader(form.Encode()))
		if err == nil {
			httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, "", unreachable(req.Server, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json, text/xml;q=0.9")

	log.Debug().
		Str("server", req.Server).
		Str("method", c.opts.Method).
		Str("language", form.Get("language")).
		Int("chars", len([]rune(req.Text))).
		Int("disabled_rules", len(req.DisabledRules)).
		Msg("Sending check request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", unreachable(req.Server, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", malformed(req.Server, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", malformed(req.Server, fmt.Errorf("status %d: %s", resp.StatusCode, textutil.Truncate(strings.TrimSpace(string(body)), 120)))
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// decoderFor picks the decoder for a response: the configured schema, the
// schema named by the content type, or the schema the body looks like.
func (c *Client) decoderFor(contentType string, body []byte) (Decoder, error) {
	if c.opts.Format != FormatAuto {
		for _, d := range c.decoders {
			if d.Name() == c.opts.Format {
				return d, nil
			}
		}
		return nil, fmt.Errorf("unknown response format %q", c.opts.Format)
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		for _, d := range c.decoders {
			if d.CanDecode(mediaType) {
				return d, nil
			}
		}
	}

	if name := sniff(body); name != "" {
		for _, d := range c.decoders {
			if d.Name() == name {
				return d, nil
			}
		}
	}
	return nil, errors.New("response is neither JSON nor XML")
}

func (c *Client) cacheKey(req Request) string {
	return textutil.Hash(
		req.Server,
		req.Language,
		strings.Join(req.DisabledRules, ","),
		c.opts.Format,
		fmt.Sprint(c.opts.SplitReplacements),
		req.Text,
	)
}

// formValues builds the request fields shared by POST bodies and GET queries.
func formValues(req Request) url.Values {
	v := url.Values{}
	v.Set("text", req.Text)

	switch lang := req.Language; lang {
	case AutoDetect:
		v.Set("autodetect", "yes")
	case "":
		v.Set("language", Auto)
	default:
		v.Set("language", lang)
	}

	if len(req.DisabledRules) > 0 {
		v.Set("disabledRules", strings.Join(req.DisabledRules, ","))
	}
	return v
}
