package engine

import (
	"context"
	"net/http"
	"time"
)

// NetworkDecider: pre-request хук, который нужен транспортам.
type NetworkDecider interface {
	DecideNetwork(ctx context.Context, rawURL string) error
}

// Transport пропускает запрос к базовому транспорту только после решения шлюза.
// Заблокированный запрос не доходит до сети и возвращает *domain.BlockedError.
type Transport struct {
	Gate NetworkDecider
	Base http.RoundTripper // nil означает http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Gate.DecideNetwork(req.Context(), req.URL.String()); err != nil {
		// RoundTripper обязан закрыть тело даже при ошибке
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	return t.base().RoundTrip(req)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// NewHTTPClient возвращает клиент, все запросы которого проходят через шлюз.
func NewHTTPClient(gate NetworkDecider, base http.RoundTripper, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &Transport{Gate: gate, Base: base},
		Timeout:   timeout,
	}
}
