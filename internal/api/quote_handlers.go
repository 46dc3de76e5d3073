package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/logger"
	"github.com/streakboard/streakboard-server/internal/quote"
)

func (s *Server) registerQuoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getQuote",
		Method:      http.MethodGet,
		Path:        "/api/v1/quote",
		Summary:     "Random quote",
		Description: "Returns a motivational quote from the upstream quote service",
		Tags:        []string{"Quotes"},
	}, s.handleGetQuote)
}

// QuoteOutput wraps a quote for Huma.
type QuoteOutput struct {
	Body *quote.Quote
}

func (s *Server) handleGetQuote(ctx context.Context, _ *struct{}) (*QuoteOutput, error) {
	if s.services.Quotes == nil {
		return nil, domainerrors.Upstream("quote service not configured")
	}

	q, err := s.services.Quotes.Random(ctx)
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("Quote fetch failed", "error", err)
		return nil, err
	}
	return &QuoteOutput{Body: q}, nil
}
