package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	reviewDomain "github.com/davicafu/devcamper/internal/review/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
)

const aggregateType = "review"

var BootcampPopulate = sharedQuery.Populate{
	Path:   "bootcamp",
	From:   "bootcamps",
	Select: []string{"name", "description"},
}

// ReviewService define los casos de uso relacionados con Review.
type ReviewService struct {
	repo      reviewDomain.ReviewRepository
	bootcamps reviewDomain.BootcampLookup
	listing   sharedQuery.Collection
	log       *zap.Logger
}

func NewReviewService(repo reviewDomain.ReviewRepository, bootcamps reviewDomain.BootcampLookup, listing sharedQuery.Collection, log *zap.Logger) *ReviewService {
	return &ReviewService{repo: repo, bootcamps: bootcamps, listing: listing, log: log}
}

func notFound(id uuid.UUID) error {
	return fmt.Errorf("%w with the id of %s", reviewDomain.ErrReviewNotFound, id)
}

func (s *ReviewService) ListReviews(ctx context.Context, values url.Values) (*sharedQuery.Result, error) {
	return sharedQuery.Run(ctx, s.listing, values, BootcampPopulate)
}

func (s *ReviewService) ListBootcampReviews(ctx context.Context, bootcampID uuid.UUID) ([]sharedQuery.Document, error) {
	return s.listing.Find(ctx, sharedQuery.FindSpec{
		Conditions: []sharedDomain.Criterion{{Field: "bootcamp", Op: sharedDomain.OpEq, Value: bootcampID.String()}},
		Sort:       []sharedQuery.Sort{{Field: sharedQuery.DefaultSortField, Desc: true}},
	})
}

func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (sharedQuery.Document, error) {
	docs, err := s.listing.Find(ctx, sharedQuery.FindSpec{
		Conditions: []sharedDomain.Criterion{{Field: sharedQuery.IDField, Op: sharedDomain.OpEq, Value: id.String()}},
		Limit:      1,
		Populate:   []sharedQuery.Populate{BootcampPopulate},
	})
	if err != nil {
		s.log.Error("Failed to fetch review", zap.String("review_id", id.String()), zap.Error(err))
		return nil, err
	}
	if len(docs) == 0 {
		return nil, notFound(id)
	}
	return docs[0], nil
}

// CreateReview publica la reseña de p sobre el bootcamp. Una por usuario y bootcamp.
func (s *ReviewService) CreateReview(ctx context.Context, p sharedDomain.Principal, bootcampID uuid.UUID, in reviewDomain.ReviewInput) (*reviewDomain.Review, error) {
	if _, err := s.bootcamps.BootcampOwner(ctx, bootcampID); err != nil {
		if errors.Is(err, reviewDomain.ErrBootcampNotFound) {
			return nil, fmt.Errorf("%w with the id of %s", reviewDomain.ErrBootcampNotFound, bootcampID)
		}
		return nil, err
	}

	review, err := reviewDomain.NewReview(bootcampID, p.ID, in)
	if err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, review.ID.String(), reviewDomain.ReviewCreated, review.ToEvent())
	if err := s.repo.Create(ctx, review, evt); err != nil {
		if !errors.Is(err, reviewDomain.ErrReviewAlreadyExists) {
			s.log.Error("Failed to create review", zap.Error(err))
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, p sharedDomain.Principal, id uuid.UUID, patch reviewDomain.ReviewPatch) (*reviewDomain.Review, error) {
	review, err := s.ownedReview(ctx, p, id, "update")
	if err != nil {
		return nil, err
	}
	if err := review.Apply(patch); err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, review.ID.String(), reviewDomain.ReviewUpdated, review.ToEvent())
	if err := s.repo.Update(ctx, review, evt); err != nil {
		if errors.Is(err, reviewDomain.ErrReviewNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, p sharedDomain.Principal, id uuid.UUID) error {
	review, err := s.ownedReview(ctx, p, id, "delete")
	if err != nil {
		return err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, id.String(), reviewDomain.ReviewDeleted, review.ToEvent())
	if err := s.repo.Delete(ctx, id, evt); err != nil {
		if errors.Is(err, reviewDomain.ErrReviewNotFound) {
			return notFound(id)
		}
		return err
	}
	return nil
}

func (s *ReviewService) ownedReview(ctx context.Context, p sharedDomain.Principal, id uuid.UUID, action string) (*reviewDomain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reviewDomain.ErrReviewNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	if !p.CanModify(review.User) {
		return nil, sharedDomain.NewError(sharedDomain.ErrForbidden,
			fmt.Sprintf("User %s is not authorized to %s review %s", p.ID, action, id))
	}
	return review, nil
}
