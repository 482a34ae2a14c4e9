package client

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/nikogura/plclient/pkg/lifter"
	"github.com/nikogura/plclient/pkg/logging"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultBaseURL is the OpenPowerlifting site.
	DefaultBaseURL = "https://www.openpowerlifting.org"
	// DefaultUserAgent identifies the client to the upstream service.
	DefaultUserAgent = "plclient/1.0"
)

//nolint:gochecknoglobals // constant byte sequence
var utf8BOM = []byte("\xef\xbb\xbf")

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	// MaxConcurrentRequests bounds in-flight requests across all callers. 1 serializes them.
	MaxConcurrentRequests int64
	// HTTPClient replaces the default transport.
	HTTPClient *http.Client
}

// Client retrieves lifter data from OpenPowerlifting. It is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	ownsHTTP   bool
	slots      *semaphore.Weighted
	closed     atomic.Bool
}

// NewClient creates a new client.
func NewClient(opts Options) (client *Client) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxConcurrentRequests < 1 {
		opts.MaxConcurrentRequests = 1
	}
	owns := opts.HTTPClient == nil
	if owns {
		// No client timeout: deadlines come from the caller's context.
		opts.HTTPClient = &http.Client{}
	}

	client = &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
		ownsHTTP:   owns,
		slots:      semaphore.NewWeighted(opts.MaxConcurrentRequests),
	}
	return client
}

// Close releases idle connections of the http.Client the Client created
// itself; a caller-supplied Options.HTTPClient is left untouched. Calls made
// afterwards fail with ErrClosed. Close is idempotent.
func (c *Client) Close() (err error) {
	if c.closed.Swap(true) {
		return err
	}
	if c.ownsHTTP {
		c.httpClient.CloseIdleConnections()
	}
	return err
}

// FetchAthlete downloads and decodes the full competition history of identifier.
// It issues exactly one request. An export with no data rows yields ErrNotFound;
// a single undecodable row fails the whole call with ErrDecode.
func (c *Client) FetchAthlete(ctx context.Context, identifier string) (athlete lifter.Athlete, err error) {
	err = c.begin(ctx, "fetch athlete")
	if err != nil {
		return athlete, err
	}

	if identifier == "" {
		err = errors.New("identifier is required")
		return athlete, err
	}

	ctx = logging.WithRequestID(ctx)
	logger := logging.WithFields(ctx, "op", "fetch_athlete", "identifier", identifier)
	logger.Debug("fetching athlete")

	var body []byte
	body, err = c.get(ctx, c.athleteCSVURL(identifier))
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch athlete %s", identifier)
		return athlete, err
	}

	var rows [][]string
	rows, err = readRows(body)
	if err != nil {
		logger.Warn("export is not valid CSV", "error", err)
		err = errors.Wrapf(err, "failed to read export for %s", identifier)
		return athlete, err
	}

	// The first row is the column header.
	if len(rows) < 2 {
		err = errors.Wrapf(ErrNotFound, "athlete %s has no data", identifier)
		return athlete, err
	}

	athlete, err = lifter.NewAthlete(identifier, rows[1:])
	if err != nil {
		logger.Warn("export row failed to decode", "error", err)
		athlete = lifter.Athlete{}
		err = errors.Wrapf(err, "failed to decode athlete %s", identifier)
		return athlete, err
	}

	err = c.finish(ctx, "fetch athlete")
	if err != nil {
		athlete = lifter.Athlete{}
		return athlete, err
	}

	logger.Debug("fetched athlete", "meets", athlete.MeetCount())
	return athlete, err
}

// ResolveIdentifier looks up the lifter best matching fullName. It issues a
// search request and, when that names a ranking position, a second request for
// that position. found is false when nothing matched; that is not an error.
func (c *Client) ResolveIdentifier(ctx context.Context, fullName string) (match Match, found bool, err error) {
	err = c.begin(ctx, "resolve identifier")
	if err != nil {
		return match, found, err
	}

	if strings.TrimSpace(fullName) == "" {
		err = errors.New("name is required")
		return match, found, err
	}

	ctx = logging.WithRequestID(ctx)
	logger := logging.WithFields(ctx, "op", "resolve_identifier", "query", fullName)

	var body []byte
	body, err = c.get(ctx, c.searchURL(fullName))
	if err != nil {
		err = errors.Wrapf(err, "failed to search for %q", fullName)
		return match, found, err
	}

	var index int64
	index, found, err = nextIndex(body)
	if err != nil {
		logger.Warn("unexpected search response", "error", err)
		found = false
		return match, found, err
	}

	if !found {
		logger.Debug("no match")
		err = c.finish(ctx, "resolve identifier")
		return match, found, err
	}

	body, err = c.get(ctx, c.rankingURL(index))
	if err != nil {
		found = false
		err = errors.Wrapf(err, "failed to fetch ranking entry %d", index)
		return match, found, err
	}

	match, err = rankingEntry(body)
	if err != nil {
		logger.Warn("unexpected ranking response", "index", index, "error", err)
		found = false
		match = Match{}
		return match, found, err
	}

	err = c.finish(ctx, "resolve identifier")
	if err != nil {
		found = false
		match = Match{}
		return match, found, err
	}

	logger.Debug("resolved", "index", index, "identifier", match.Identifier)
	return match, found, err
}

// begin rejects calls on a closed client or an already-finished context.
func (c *Client) begin(ctx context.Context, op string) (err error) {
	if c.closed.Load() {
		err = errors.Wrap(ErrClosed, op)
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Wrapf(ErrCancelled, "%s: %v", op, ctxErr)
		return err
	}
	return err
}

// finish reports cancellation that arrived after the last byte was received,
// so a cancelled call never hands back a result.
func (c *Client) finish(ctx context.Context, op string) (err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Wrapf(ErrCancelled, "%s: %v", op, ctxErr)
		return err
	}
	return err
}

func (c *Client) athleteCSVURL(identifier string) (u string) {
	u = c.baseURL + "/u/" + url.PathEscape(identifier) + "/csv"
	return u
}

func (c *Client) searchURL(query string) (u string) {
	v := url.Values{}
	v.Set("q", query)
	v.Set("start", "0")
	u = c.baseURL + "/api/search/rankings?" + v.Encode()
	return u
}

func (c *Client) rankingURL(index int64) (u string) {
	u = fmt.Sprintf("%s/api/rankings?start=%d&end=%d&lang=en&units=kg", c.baseURL, index, index)
	return u
}

// readRows tokenizes a CSV export. Row width is checked by the decoder.
func readRows(body []byte) (rows [][]string, err error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	r.FieldsPerRecord = -1

	rows, err = r.ReadAll()
	if err != nil {
		err = errors.Wrapf(ErrDecode, "malformed CSV: %v", err)
		return rows, err
	}

	return rows, err
}
