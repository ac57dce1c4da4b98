package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/agenthands/twohop/internal/breaker"
	"github.com/agenthands/twohop/internal/core/model"
	"github.com/agenthands/twohop/internal/logging"
	"github.com/agenthands/twohop/internal/metrics"
)

const (
	FilterAll = "all"
	FilterIDs = "ids"

	maxBodyBytes = 16 << 20
)

// HTTPClient talks to the directory service's JSON endpoints.
type HTTPClient struct {
	baseURL string
	filter  string
	client  *http.Client
	log     zerolog.Logger

	// one breaker per endpoint so a graph outage leaves profiles reachable
	graphBreaker   *breaker.Breaker[[]byte]
	profileBreaker *breaker.Breaker[[]byte]
}

// NewHTTPClient builds a client for baseURL. With filter FilterIDs the
// profile listing is asked for the wanted ids only; results are filtered
// locally either way.
func NewHTTPClient(baseURL, filter string, timeout time.Duration) *HTTPClient {
	if filter == "" {
		filter = FilterAll
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		filter:  filter,
		client:  &http.Client{Timeout: timeout},
		log:     logging.Component("directory"),

		graphBreaker:   breaker.New[[]byte]("directory-http-graph"),
		profileBreaker: breaker.New[[]byte]("directory-http-profiles"),
	}
}

type graphResponse struct {
	Center int64         `json:"center"`
	Nodes  []nodeRef     `json:"nodes"`
	Edges  *[]model.Edge `json:"edges"`
}

// nodeRef accepts both a bare id and an object carrying one.
type nodeRef int64

func (n *nodeRef) UnmarshalJSON(data []byte) error {
	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		*n = nodeRef(id)
		return nil
	}
	var obj struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("node is neither an id nor an object: %w", err)
	}
	*n = nodeRef(obj.ID)
	return nil
}

func (c *HTTPClient) EgoGraph(ctx context.Context, center int64, depth int) (*model.EgoGraph, error) {
	q := url.Values{}
	q.Set("center", strconv.FormatInt(center, 10))
	q.Set("depth", strconv.Itoa(depth))
	q.Set("format", "json")

	body, err := c.get(ctx, c.graphBreaker, "/network/graph", q)
	if err != nil {
		metrics.DirectoryCalls.WithLabelValues("ego_graph", "error").Inc()
		return nil, err
	}

	var resp graphResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.DirectoryCalls.WithLabelValues("ego_graph", "error").Inc()
		return nil, fmt.Errorf("%w: decode graph: %v", ErrDirectoryUnavailable, err)
	}
	if resp.Edges == nil {
		metrics.DirectoryCalls.WithLabelValues("ego_graph", "error").Inc()
		return nil, fmt.Errorf("%w: graph response has no edges", ErrDirectoryUnavailable)
	}
	metrics.DirectoryCalls.WithLabelValues("ego_graph", "ok").Inc()

	edges := *resp.Edges
	g := &model.EgoGraph{Center: center, Depth: depth, Edges: edges}
	if len(resp.Nodes) > 0 {
		g.Nodes = make([]int64, len(resp.Nodes))
		for i, n := range resp.Nodes {
			g.Nodes[i] = int64(n)
		}
	} else {
		g.Nodes = nodesOf(center, edges)
	}

	c.log.Debug().Int64("center", center).Int("edges", len(edges)).Msg("fetched ego graph")
	return g, nil
}

type listResponse struct {
	Results []json.RawMessage `json:"results"`
}

// wireProfile is a profile as the directory service renders it. Decimal
// fields may arrive as strings.
type wireProfile struct {
	ID                int64       `json:"id"`
	Name              string      `json:"name"`
	Intro             string      `json:"intro"`
	Gender            string      `json:"gender"`
	AgeBand           string      `json:"age_band"`
	City              string      `json:"city"`
	MannerTemperature flexFloat64 `json:"manner_temperature"`
}

// flexFloat64 accepts 74, 74.0, "74.0" and null.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s != "null" {
		s = strings.TrimSpace(strings.Trim(s, `"`))
	}
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	*f = flexFloat64(v)
	return nil
}

func (w wireProfile) profile() model.Profile {
	return model.Profile{
		ID:                w.ID,
		Name:              w.Name,
		Intro:             w.Intro,
		Gender:            w.Gender,
		AgeBand:           w.AgeBand,
		City:              w.City,
		MannerTemperature: float64(w.MannerTemperature),
	}
}

func (c *HTTPClient) Profiles(ctx context.Context, ids []int64) (map[int64]model.Profile, error) {
	out := make(map[int64]model.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	q := url.Values{}
	if c.filter == FilterIDs {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatInt(id, 10)
		}
		q.Set("ids", strings.Join(parts, ","))
	}

	body, err := c.get(ctx, c.profileBreaker, "/users/all", q)
	if err != nil {
		metrics.DirectoryCalls.WithLabelValues("profiles", "error").Inc()
		return nil, err
	}

	records, err := decodeListing(body)
	if err != nil {
		metrics.DirectoryCalls.WithLabelValues("profiles", "error").Inc()
		return nil, fmt.Errorf("%w: decode profiles: %v", ErrDirectoryUnavailable, err)
	}
	metrics.DirectoryCalls.WithLabelValues("profiles", "ok").Inc()

	profiles := c.decodeProfiles(records)
	want := idSet(ids)
	for _, p := range profiles {
		if want[p.ID] {
			out[p.ID] = p
		}
	}
	return out, nil
}

// decodeListing splits a bare array or a {"results": [...]} envelope into
// raw records.
func decodeListing(body []byte) ([]json.RawMessage, error) {
	if strings.HasPrefix(strings.TrimSpace(string(body)), "[") {
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var env listResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// decodeProfiles decodes each record on its own; a malformed record is
// logged and skipped.
func (c *HTTPClient) decodeProfiles(records []json.RawMessage) []model.Profile {
	profiles := make([]model.Profile, 0, len(records))
	for i, raw := range records {
		var w wireProfile
		if err := json.Unmarshal(raw, &w); err != nil {
			c.log.Warn().Err(err).Int("index", i).Msg("skipping malformed profile record")
			continue
		}
		profiles = append(profiles, w.profile())
	}
	return profiles
}

func (c *HTTPClient) get(ctx context.Context, cb *breaker.Breaker[[]byte], path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	body, err := cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return body, nil
}
