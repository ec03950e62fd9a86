package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/partmatch/pkg/kit"
	"github.com/hazyhaar/partmatch/pkg/metrics"
	"github.com/hazyhaar/partmatch/pkg/parts"
)

// Errors mapped to client-side status codes by both transports.
var (
	ErrNotFound   = errors.New("component not found")
	ErrBadRequest = errors.New("bad request")
)

// maxTextBytes bounds a single extraction request.
const maxTextBytes = 1 << 20

// Service is what the HTTP and MCP surfaces serve. Metrics and Logger are
// optional.
type Service struct {
	Catalog   *parts.Catalog
	Extractor *parts.Extractor
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// wrap applies the shared middleware stack to an endpoint.
func (s Service) wrap(name string, ep kit.Endpoint) kit.Endpoint {
	return kit.Chain(kit.RequestID(), kit.Logging(s.logger(), name))(ep)
}

// Shared request/response types used by both HTTP and MCP transports.

type extractReq struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type compatibleResponse struct {
	Voltage     float64  `json:"voltage"`
	Temperature float64  `json:"temperature"`
	Components  []string `json:"components"`
}

type componentsResponse struct {
	Directory  string             `json:"directory"`
	Components []*parts.Component `json:"components"`
	Stats      parts.LoadStats    `json:"stats"`
}

func extractEndpoint(ex *parts.Extractor) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*extractReq)
		if len(req.Text) > maxTextBytes {
			return nil, fmt.Errorf("%w: text exceeds %d bytes", ErrBadRequest, maxTextBytes)
		}
		name := req.Name
		if name == "" {
			name = "document"
		}
		return ex.Extract(name, req.Text), nil
	}
}

func compatibleEndpoint(cat *parts.Catalog, m *metrics.Metrics) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		q := request.(*parts.Query)
		names, err := cat.Compatible(*q)
		if m != nil {
			m.ObserveQuery(len(names), err)
		}
		if err != nil {
			return nil, err
		}
		return compatibleResponse{Voltage: q.Voltage, Temperature: q.Temperature, Components: names}, nil
	}
}

func listComponentsEndpoint(cat *parts.Catalog) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return componentsResponse{
			Directory:  cat.Dir(),
			Components: cat.Components(),
			Stats:      cat.Stats(),
		}, nil
	}
}

func getComponentEndpoint(cat *parts.Catalog) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		name := request.(string)
		c, ok := cat.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return c, nil
	}
}
