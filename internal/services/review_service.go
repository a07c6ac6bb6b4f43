package services

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"shopkart/internal/domain"
	"shopkart/internal/repos"
	"shopkart/internal/validate"
)

var (
	ErrAlreadyReviewed = errors.New("you have already reviewed this product")
	ErrBadRating       = errors.New("rating must be between 1 and 5")
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotOwner        = errors.New("not your review")
)

type ReviewService struct {
	Reviews *repos.ReviewRepo
	Prods   *repos.ProductRepo
}

func NewReviewService(reviews *repos.ReviewRepo, prods *repos.ProductRepo) *ReviewService {
	return &ReviewService{Reviews: reviews, Prods: prods}
}

type ReviewSummary struct {
	Reviews       []repos.ReviewRow `json:"reviews"`
	AverageRating float64           `json:"averageRating"`
	TotalReviews  int               `json:"totalReviews"`
}

func (s *ReviewService) ForProduct(productID string) (ReviewSummary, error) {
	reviews, err := s.Reviews.ListByProduct(productID)
	if err != nil {
		return ReviewSummary{}, err
	}
	avg, count, err := s.Reviews.Aggregate(productID)
	if err != nil {
		return ReviewSummary{}, err
	}
	return ReviewSummary{Reviews: reviews, AverageRating: round1(avg), TotalReviews: count}, nil
}

// Create enforces one review per (user, product). The existence check runs
// first for a clean error message; the unique index on reviews backs it up
// against concurrent duplicates.
func (s *ReviewService) Create(userID, productID string, rating int, comment string) (*domain.Review, error) {
	if !validate.Rating(rating) {
		return nil, ErrBadRating
	}
	if _, err := s.Prods.Get(productID); err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	} else if err != nil {
		return nil, err
	}

	exists, err := s.Reviews.Exists(userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	rv := domain.Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.Reviews.Create(rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

// Update applies a partial edit; only the review's owner may update it.
// Rating and comment are optional; a nil pointer means "leave unchanged".
func (s *ReviewService) Update(userID, reviewID string, rating *int, comment *string) (*domain.Review, error) {
	existing, err := s.Reviews.Get(reviewID)
	if err == sql.ErrNoRows {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrNotOwner
	}

	cols := map[string]any{}
	if rating != nil {
		if !validate.Rating(*rating) {
			return nil, ErrBadRating
		}
		cols["rating"] = *rating
	}
	if comment != nil {
		cols["comment"] = *comment
	}
	if err := s.Reviews.Update(reviewID, cols); err != nil {
		return nil, err
	}

	updated, err := s.Reviews.Get(reviewID)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ReviewService) Delete(userID, reviewID string) error {
	existing, err := s.Reviews.Get(reviewID)
	if err == sql.ErrNoRows {
		return ErrReviewNotFound
	}
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return ErrNotOwner
	}
	return s.Reviews.Delete(reviewID)
}
