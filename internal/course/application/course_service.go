package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	courseDomain "github.com/davicafu/devcamper/internal/course/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
)

const aggregateType = "course"

// BootcampPopulate sustituye el id del bootcamp por su nombre y descripción.
var BootcampPopulate = sharedQuery.Populate{
	Path:   "bootcamp",
	From:   "bootcamps",
	Select: []string{"name", "description"},
}

// CourseService define los casos de uso relacionados con Course.
type CourseService struct {
	repo      courseDomain.CourseRepository
	bootcamps courseDomain.BootcampLookup
	listing   sharedQuery.Collection
	log       *zap.Logger
}

func NewCourseService(repo courseDomain.CourseRepository, bootcamps courseDomain.BootcampLookup, listing sharedQuery.Collection, log *zap.Logger) *CourseService {
	return &CourseService{repo: repo, bootcamps: bootcamps, listing: listing, log: log}
}

func notFound(id uuid.UUID) error {
	return fmt.Errorf("%w with the id of %s", courseDomain.ErrCourseNotFound, id)
}

// ListCourses aplica el lenguaje de consulta sobre todos los cursos.
func (s *CourseService) ListCourses(ctx context.Context, values url.Values) (*sharedQuery.Result, error) {
	return sharedQuery.Run(ctx, s.listing, values, BootcampPopulate)
}

// ListBootcampCourses devuelve todos los cursos de un bootcamp, sin paginar.
func (s *CourseService) ListBootcampCourses(ctx context.Context, bootcampID uuid.UUID) ([]sharedQuery.Document, error) {
	return s.listing.Find(ctx, sharedQuery.FindSpec{
		Conditions: []sharedDomain.Criterion{{Field: "bootcamp", Op: sharedDomain.OpEq, Value: bootcampID.String()}},
		Sort:       []sharedQuery.Sort{{Field: sharedQuery.DefaultSortField, Desc: true}},
	})
}

// GetCourse devuelve el curso con el bootcamp incrustado, con la misma forma que el listado.
func (s *CourseService) GetCourse(ctx context.Context, id uuid.UUID) (sharedQuery.Document, error) {
	docs, err := s.listing.Find(ctx, sharedQuery.FindSpec{
		Conditions: []sharedDomain.Criterion{{Field: sharedQuery.IDField, Op: sharedDomain.OpEq, Value: id.String()}},
		Limit:      1,
		Populate:   []sharedQuery.Populate{BootcampPopulate},
	})
	if err != nil {
		s.log.Error("Failed to fetch course", zap.String("course_id", id.String()), zap.Error(err))
		return nil, err
	}
	if len(docs) == 0 {
		return nil, notFound(id)
	}
	return docs[0], nil
}

// CreateCourse añade un curso al bootcamp. Solo su propietario o un admin.
func (s *CourseService) CreateCourse(ctx context.Context, p sharedDomain.Principal, bootcampID uuid.UUID, in courseDomain.CourseInput) (*courseDomain.Course, error) {
	owner, err := s.bootcamps.BootcampOwner(ctx, bootcampID)
	if err != nil {
		if errors.Is(err, courseDomain.ErrBootcampNotFound) {
			return nil, fmt.Errorf("%w with the id of %s", courseDomain.ErrBootcampNotFound, bootcampID)
		}
		return nil, err
	}
	if !p.CanModify(owner) {
		return nil, sharedDomain.NewError(sharedDomain.ErrForbidden,
			fmt.Sprintf("User %s is not authorized to add a course to bootcamp %s", p.ID, bootcampID))
	}

	course, err := courseDomain.NewCourse(bootcampID, p.ID, in)
	if err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, course.ID.String(), courseDomain.CourseCreated, course.ToEvent())
	if err := s.repo.Create(ctx, course, evt); err != nil {
		s.log.Error("Failed to create course", zap.Error(err))
		return nil, err
	}
	return course, nil
}

// UpdateCourse aplica una actualización parcial. Solo el propietario del curso o un admin.
func (s *CourseService) UpdateCourse(ctx context.Context, p sharedDomain.Principal, id uuid.UUID, patch courseDomain.CoursePatch) (*courseDomain.Course, error) {
	course, err := s.ownedCourse(ctx, p, id, "update")
	if err != nil {
		return nil, err
	}
	if _, err := course.Apply(patch); err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, course.ID.String(), courseDomain.CourseUpdated, course.ToEvent())
	if err := s.repo.Update(ctx, course, evt); err != nil {
		if errors.Is(err, courseDomain.ErrCourseNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, p sharedDomain.Principal, id uuid.UUID) error {
	course, err := s.ownedCourse(ctx, p, id, "delete")
	if err != nil {
		return err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, id.String(), courseDomain.CourseDeleted, course.ToEvent())
	if err := s.repo.Delete(ctx, id, evt); err != nil {
		if errors.Is(err, courseDomain.ErrCourseNotFound) {
			return notFound(id)
		}
		return err
	}
	return nil
}

func (s *CourseService) ownedCourse(ctx context.Context, p sharedDomain.Principal, id uuid.UUID, action string) (*courseDomain.Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, courseDomain.ErrCourseNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	if !p.CanModify(course.User) {
		return nil, sharedDomain.NewError(sharedDomain.ErrForbidden,
			fmt.Sprintf("User %s is not authorized to %s course %s", p.ID, action, id))
	}
	return course, nil
}
