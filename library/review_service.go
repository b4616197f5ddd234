package library

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ReviewService records book reviews, one per user and book.
type ReviewService struct {
	store  Store
	policy Policy
	log    logrus.FieldLogger
}

func NewReviewService(store Store, policy Policy, log logrus.FieldLogger) *ReviewService {
	return &ReviewService{store: store, policy: policy, log: log}
}

// PostReview stores userEmail's review dated today.
func (s *ReviewService) PostReview(ctx context.Context, userEmail string, req ReviewRequest) (*Review, error) {
	var review *Review
	err := s.store.InTx(ctx, func(q Queries) error {
		existing, err := q.FindReview(ctx, userEmail, req.BookID)
		if err != nil {
			return err
		}
		if existing != nil {
			return newError(KindAlreadyExists, "Review already created")
		}
		if err := req.validate(); err != nil {
			return err
		}

		review = req.toReview(userEmail, s.policy.today())
		review.ID, err = q.InsertReview(ctx, review)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user": userEmail, "book": req.BookID, "rating": req.Rating}).Info("review posted")
	return review, nil
}

// UserReviewListed reports whether userEmail already reviewed bookID.
func (s *ReviewService) UserReviewListed(ctx context.Context, userEmail string, bookID int64) (bool, error) {
	r, err := s.store.FindReview(ctx, userEmail, bookID)
	if err != nil {
		return false, err
	}
	return r != nil, nil
}

func (s *ReviewService) ReviewsForBook(ctx context.Context, bookID int64, page PageRequest) (*Page[*Review], error) {
	return s.store.FindReviewsByBookID(ctx, bookID, page)
}
