package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/airopshq/airops/internal/analytics"
	"github.com/airopshq/airops/internal/logging"
	"github.com/airopshq/airops/internal/storage"
)

// DefaultReviewLimit is used when a search does not set a limit
const DefaultReviewLimit = 20

// maxSearchLength bounds the free-text search
const maxSearchLength = 200

// ReviewService searches passenger feedback
type ReviewService struct {
	logger   *logging.Logger
	source   storage.Source
	maxLimit int
}

// NewReviewService creates a new ReviewService
func NewReviewService(logger *logging.Logger, source storage.Source, maxLimit int) *ReviewService {
	if maxLimit < 1 {
		maxLimit = DefaultReviewLimit
	}
	return &ReviewService{
		logger:   logger,
		source:   source,
		maxLimit: maxLimit,
	}
}

// ReviewSearchRequest represents a review search request
type ReviewSearchRequest struct {
	Search    string `query:"search"`
	MinRating int    `query:"min_rating"`
	AirlineID int64  `query:"airline_id"`
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
}

// RatingStats summarizes the ratings of the returned page
type RatingStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// ReviewSearchResponse is the result of a review search
type ReviewSearchResponse struct {
	Reviews []storage.Review `json:"reviews"`
	Stats   RatingStats      `json:"stats"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// Search validates the filter and returns matching reviews with rating statistics
func (s *ReviewService) Search(ctx context.Context, req ReviewSearchRequest) (*ReviewSearchResponse, error) {
	start := time.Now()

	filter, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	reviews, err := s.source.SearchReviews(ctx, filter)
	if err != nil {
		s.logger.WithContext(ctx).Error("Review search failed", "error", err)
		return nil, sourceUnavailable("reviews", err)
	}

	s.logger.WithContext(ctx).Debug("Review search completed",
		"results", len(reviews),
		"duration", time.Since(start),
	)

	return &ReviewSearchResponse{
		Reviews: reviews,
		Stats:   ratingStats(reviews),
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

func (s *ReviewService) normalize(req ReviewSearchRequest) (storage.ReviewFilter, error) {
	search := strings.TrimSpace(req.Search)
	if len(search) > maxSearchLength {
		return storage.ReviewFilter{}, invalidRequest(
			fmt.Sprintf("search must be at most %d characters", maxSearchLength), nil)
	}

	if req.MinRating < 0 || req.MinRating > 5 {
		return storage.ReviewFilter{}, invalidRequest("min_rating must be between 0 and 5",
			map[string]interface{}{"min_rating": req.MinRating})
	}

	if req.AirlineID < 0 {
		return storage.ReviewFilter{}, invalidRequest("airline_id cannot be negative",
			map[string]interface{}{"airline_id": req.AirlineID})
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultReviewLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	if limit < 1 {
		return storage.ReviewFilter{}, invalidRequest("limit must be positive",
			map[string]interface{}{"limit": req.Limit})
	}

	if req.Offset < 0 {
		return storage.ReviewFilter{}, invalidRequest("offset cannot be negative",
			map[string]interface{}{"offset": req.Offset})
	}

	return storage.ReviewFilter{
		Search:    search,
		MinRating: req.MinRating,
		AirlineID: req.AirlineID,
		Limit:     limit,
		Offset:    req.Offset,
	}, nil
}

func ratingStats(reviews []storage.Review) RatingStats {
	ratings := make([]float64, len(reviews))
	for i, r := range reviews {
		ratings[i] = float64(r.Rating)
	}
	return RatingStats{
		Count:  len(ratings),
		Mean:   analytics.Mean(ratings),
		Median: analytics.Percentile(ratings, 50),
		P90:    analytics.Percentile(ratings, 90),
	}
}
