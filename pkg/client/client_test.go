package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikogura/plclient/pkg/lifter"
)

const (
	rowNationals = "Andrey Malanichev,M,SBD,Wraps,31.5,24-34,24-39,Seniors,139.6,140+," +
		"400,420,-430,,420,260,270,275,,275,340,360,-370,,360," +
		"1055,1,612.43,597.21,571.08,78.9,Yes,Russia,,WRPF,,2014-06-21,Russia,,Moscow,WRPF Russian Nationals"
	rowWorldCup = "Andrey Malanichev,M,SBD,Wraps,32.5,24-34,24-39,Seniors,141.2,140+," +
		"410,425,,,425,265,275,-280,,275,350,365,,,365," +
		"1065,DQ,,,,,Yes,Russia,,WRPF,,2015-11-07,Russia,,Moscow,\"WRPF World Cup, Open\""
	rowCyborg = "Andrey Malanichev,M,SBD,Cyborg,31.5,24-34,24-39,Seniors,139.6,140+," +
		"400,420,-430,,420,260,270,275,,275,340,360,-370,,360," +
		"1055,1,612.43,597.21,571.08,78.9,Yes,Russia,,WRPF,,2014-06-21,Russia,,Moscow,WRPF Russian Nationals"
)

func csvExport(rows ...string) (body string) {
	header := strings.Join(lifter.Columns[:], ",")
	body = strings.Join(append([]string{header}, rows...), "\n") + "\n"
	return body
}

// fakeService mimics the upstream endpoints and counts requests.
type fakeService struct {
	requests atomic.Int64
}

func (f *fakeService) handler(t *testing.T) (h http.Handler) {
	mux := http.NewServeMux()

	mux.HandleFunc("/u/andreymalanichev/csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csvExport(rowNationals, rowWorldCup, rowNationals)))
	})
	mux.HandleFunc("/u/nobody/csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csvExport()))
	})
	mux.HandleFunc("/u/broken/csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csvExport(rowNationals, rowCyborg)))
	})
	mux.HandleFunc("/u/ragged/csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("a,\"b\n"))
	})
	mux.HandleFunc("/u/slow/csv", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	mux.HandleFunc("/api/search/rankings", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") != "0" {
			t.Errorf("Expected start=0, got %s", r.URL.Query().Get("start"))
		}
		switch r.URL.Query().Get("q") {
		case "Andrey Malanichev":
			_, _ = w.Write([]byte(`{"next_index": 1234}`))
		case "drift":
			_, _ = w.Write([]byte(`{"next_index": 7}`))
		case "garbage":
			_, _ = w.Write([]byte(`<html>oops</html>`))
		case "slow":
			<-r.Context().Done()
		default:
			_, _ = w.Write([]byte(`{"next_index": null}`))
		}
	})

	mux.HandleFunc("/api/rankings", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start") != q.Get("end") || q.Get("lang") != "en" || q.Get("units") != "kg" {
			t.Errorf("Unexpected ranking query: %s", r.URL.RawQuery)
		}
		switch q.Get("start") {
		case "1234":
			_, _ = w.Write([]byte(`{"total_length": 5000, "rows": [[1234, 1235, "Andrey Malanichev", "andreymalanichev", "", "ru", "", "WRPF"]]}`))
		default:
			_, _ = w.Write([]byte(`{"total_length": 5000, "rows": []}`))
		}
	})

	h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("Expected user agent %s, got %s", DefaultUserAgent, r.Header.Get("User-Agent"))
		}
		mux.ServeHTTP(w, r)
	})
	return h
}

func newTestClient(t *testing.T) (client *Client, svc *fakeService) {
	t.Helper()
	svc = &fakeService{}
	server := httptest.NewServer(svc.handler(t))
	t.Cleanup(server.Close)

	client = NewClient(Options{BaseURL: server.URL + "/"})
	t.Cleanup(func() { _ = client.Close() })
	return client, svc
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Options{})

	if client.baseURL != DefaultBaseURL {
		t.Errorf("Expected base URL '%s', got '%s'", DefaultBaseURL, client.baseURL)
	}

	if client.userAgent != DefaultUserAgent {
		t.Errorf("Expected user agent '%s', got '%s'", DefaultUserAgent, client.userAgent)
	}

	if client.httpClient == nil {
		t.Error("Expected non-nil HTTP client")
	}

	if client.slots == nil {
		t.Error("Expected non-nil request slots")
	}
}

func TestFetchAthlete(t *testing.T) {
	client, svc := newTestClient(t)

	athlete, err := client.FetchAthlete(context.Background(), "andreymalanichev")
	if err != nil {
		t.Fatalf("FetchAthlete failed: %v", err)
	}

	if athlete.FullName != "Andrey Malanichev" {
		t.Errorf("Expected name 'Andrey Malanichev', got '%s'", athlete.FullName)
	}

	if athlete.Identifier != "andreymalanichev" {
		t.Errorf("Expected identifier 'andreymalanichev', got '%s'", athlete.Identifier)
	}

	if athlete.Sex != lifter.SexMale {
		t.Errorf("Expected sex M, got %s", athlete.Sex)
	}

	// Three data rows, one an exact duplicate.
	if athlete.MeetCount() != 2 {
		t.Errorf("Expected 2 meets, got %d", athlete.MeetCount())
	}

	worldCup := athlete.Meets()[1]
	if worldCup.MeetName != "WRPF World Cup, Open" {
		t.Errorf("Expected quoted meet name to survive, got '%s'", worldCup.MeetName)
	}
	if worldCup.Place != lifter.Categorical(lifter.PlaceDisqualified) {
		t.Errorf("Expected DQ, got %s", worldCup.Place)
	}
	if worldCup.Dots.Present() {
		t.Error("Expected absent Dots")
	}

	if svc.requests.Load() != 1 {
		t.Errorf("Expected 1 request, got %d", svc.requests.Load())
	}
}

func TestFetchAthleteNoRows(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.FetchAthlete(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFetchAthleteBadRow(t *testing.T) {
	client, _ := newTestClient(t)

	athlete, err := client.FetchAthlete(context.Background(), "broken")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("Expected ErrDecode, got %v", err)
	}

	var fe *lifter.FieldError
	if !errors.As(err, &fe) || fe.Column != lifter.ColEquipment {
		t.Errorf("Expected equipment field error, got %v", err)
	}

	if athlete.MeetCount() != 0 {
		t.Error("Expected no partial athlete")
	}
}

func TestFetchAthleteMalformedCSV(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.FetchAthlete(context.Background(), "ragged")
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}

func TestFetchAthleteStatus(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.FetchAthlete(context.Background(), "missing")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 status error, got %v", err)
	}
}

func TestFetchAthleteConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(Options{BaseURL: url})
	defer client.Close()

	_, err := client.FetchAthlete(context.Background(), "andreymalanichev")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Expected ErrTransport, got %v", err)
	}
}

func TestFetchAthleteEmptyIdentifier(t *testing.T) {
	client, svc := newTestClient(t)

	_, err := client.FetchAthlete(context.Background(), "")
	if err == nil {
		t.Error("Expected error for empty identifier, got nil")
	}

	if svc.requests.Load() != 0 {
		t.Errorf("Expected no requests, got %d", svc.requests.Load())
	}
}

func TestResolveIdentifier(t *testing.T) {
	client, svc := newTestClient(t)

	match, found, err := client.ResolveIdentifier(context.Background(), "Andrey Malanichev")
	if err != nil {
		t.Fatalf("ResolveIdentifier failed: %v", err)
	}

	if !found {
		t.Fatal("Expected a match")
	}

	if match.Name != "Andrey Malanichev" {
		t.Errorf("Expected name 'Andrey Malanichev', got '%s'", match.Name)
	}

	if match.Identifier != "andreymalanichev" {
		t.Errorf("Expected identifier 'andreymalanichev', got '%s'", match.Identifier)
	}

	if svc.requests.Load() != 2 {
		t.Errorf("Expected 2 requests, got %d", svc.requests.Load())
	}
}

func TestResolveIdentifierNoMatch(t *testing.T) {
	client, svc := newTestClient(t)

	match, found, err := client.ResolveIdentifier(context.Background(), "Nobody At All")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if found {
		t.Errorf("Expected no match, got %+v", match)
	}

	if svc.requests.Load() != 1 {
		t.Errorf("Expected 1 request, got %d", svc.requests.Load())
	}
}

func TestResolveIdentifierSchemaDrift(t *testing.T) {
	client, _ := newTestClient(t)

	_, found, err := client.ResolveIdentifier(context.Background(), "drift")
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}

	if found {
		t.Error("Expected found to be false on failure")
	}
}

func TestResolveIdentifierInvalidJSON(t *testing.T) {
	client, _ := newTestClient(t)

	_, _, err := client.ResolveIdentifier(context.Background(), "garbage")
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}

func TestCancelledBeforeCall(t *testing.T) {
	client, svc := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	athlete, err := client.FetchAthlete(ctx, "andreymalanichev")
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled from fetch, got %v", err)
	}
	if athlete.MeetCount() != 0 {
		t.Error("Expected empty athlete on cancellation")
	}

	_, found, err := client.ResolveIdentifier(ctx, "Andrey")
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled from resolve, got %v", err)
	}
	if found {
		t.Error("Expected no match on cancellation")
	}

	if svc.requests.Load() != 0 {
		t.Errorf("Expected no requests, got %d", svc.requests.Load())
	}
}

func TestCancelledDuringCall(t *testing.T) {
	client, _ := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.FetchAthlete(ctx, "slow")
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled from fetch, got %v", err)
	}
	if errors.Is(err, ErrDecode) {
		t.Error("Cancellation must not look like a decode failure")
	}

	ctx2, cancel2 := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel2)

	_, _, err = client.ResolveIdentifier(ctx2, "slow")
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled from resolve, got %v", err)
	}
}

func TestCancelledDuringRankingRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/api/search/rankings":
			_, _ = w.Write([]byte(`{"next_index": 3}`))
		case "/api/rankings":
			cancel()
			<-r.Context().Done()
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	defer func() { _ = client.Close() }()

	match, found, err := client.ResolveIdentifier(ctx, "Andrey Malanichev")
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled, got %v", err)
	}
	if errors.Is(err, ErrDecode) {
		t.Error("Cancellation must not look like a decode failure")
	}
	if found {
		t.Error("Expected no match on cancellation")
	}
	if match != (Match{}) {
		t.Errorf("Expected zero match, got %+v", match)
	}
	if requests.Load() != 2 {
		t.Errorf("Expected 2 requests, got %d", requests.Load())
	}
}

func TestClosedClient(t *testing.T) {
	client, svc := newTestClient(t)

	err := client.Close()
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Close is idempotent.
	err = client.Close()
	if err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}

	_, err = client.FetchAthlete(context.Background(), "andreymalanichev")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from fetch, got %v", err)
	}

	_, _, err = client.ResolveIdentifier(context.Background(), "Andrey Malanichev")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from resolve, got %v", err)
	}

	if svc.requests.Load() != 0 {
		t.Errorf("Expected no requests, got %d", svc.requests.Load())
	}
}

// idleCounter is a transport that only records CloseIdleConnections calls.
type idleCounter struct {
	closes atomic.Int64
}

func (c *idleCounter) RoundTrip(r *http.Request) (resp *http.Response, err error) {
	err = errors.New("no network in this test")
	return resp, err
}

func (c *idleCounter) CloseIdleConnections() {
	c.closes.Add(1)
}

func TestCloseLeavesCallerHTTPClientAlone(t *testing.T) {
	transport := &idleCounter{}
	client := NewClient(Options{HTTPClient: &http.Client{Transport: transport}})

	err := client.Close()
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if transport.closes.Load() != 0 {
		t.Errorf("Expected caller's transport untouched, got %d CloseIdleConnections calls", transport.closes.Load())
	}

	_, err = client.FetchAthlete(context.Background(), "andreymalanichev")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after Close, got %v", err)
	}
}

func TestCloseReleasesOwnedHTTPClient(t *testing.T) {
	client := NewClient(Options{})
	transport := &idleCounter{}
	client.httpClient.Transport = transport

	_ = client.Close()
	_ = client.Close()
	if transport.closes.Load() != 1 {
		t.Errorf("Expected 1 CloseIdleConnections call, got %d", transport.closes.Load())
	}
}

func TestConcurrentCallersBounded(t *testing.T) {
	var inFlight, peak atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := peak.Load()
			if n <= cur || peak.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		_, _ = w.Write([]byte(csvExport(rowNationals)))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, MaxConcurrentRequests: 2})
	defer client.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.FetchAthlete(context.Background(), "andreymalanichev")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Concurrent fetch failed: %v", err)
		}
	}

	if peak.Load() > 2 {
		t.Errorf("Expected at most 2 requests in flight, got %d", peak.Load())
	}
}

func TestURLs(t *testing.T) {
	client := NewClient(Options{BaseURL: "https://example.org/"})

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "athlete export",
			got:      client.athleteCSVURL("andreymalanichev"),
			expected: "https://example.org/u/andreymalanichev/csv",
		},
		{
			name:     "athlete export escaped",
			got:      client.athleteCSVURL("a/b"),
			expected: "https://example.org/u/a%2Fb/csv",
		},
		{
			name:     "search",
			got:      client.searchURL("Andrey Malanichev&x"),
			expected: "https://example.org/api/search/rankings?q=Andrey+Malanichev%26x&start=0",
		},
		{
			name:     "ranking entry",
			got:      client.rankingURL(1234),
			expected: "https://example.org/api/rankings?start=1234&end=1234&lang=en&units=kg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, tt.got)
			}
		})
	}
}
