package service

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"proshop/internal/models"
)

var ErrAlreadyReviewed = errors.New("product already reviewed")

// AddReview appends a review and recomputes the derived fields in memory.
// The caller persists the product as a single document replace, so from its
// point of view reviews, numReviews and rating change together. At most one
// review per (product, user); the rating value is taken as sent, matching
// the original aggregation which never clamped it.
func AddReview(product *models.Product, userID primitive.ObjectID, userName string, rating int, comment string) error {
	for _, r := range product.Reviews {
		if r.UserID == userID {
			return ErrAlreadyReviewed
		}
	}

	product.Reviews = append(product.Reviews, models.Review{
		UserID:    userID,
		Name:      userName,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	})
	product.NumReviews = len(product.Reviews)

	sum := 0
	for _, r := range product.Reviews {
		sum += r.Rating
	}
	product.Rating = float64(sum) / float64(len(product.Reviews))

	return nil
}
