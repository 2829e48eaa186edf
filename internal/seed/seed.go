// Package seed carga y borra los datos de ejemplo (bootcamps, cursos, reseñas y usuarios)
// a partir de ficheros JSON. Las altas pasan por los repositorios, así que también
// generan sus eventos de outbox y las medias se recalculan al publicarse.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	courseDomain "github.com/davicafu/devcamper/internal/course/domain"
	reviewDomain "github.com/davicafu/devcamper/internal/review/domain"
	userDomain "github.com/davicafu/devcamper/internal/user/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedValidation "github.com/davicafu/devcamper/shared/platform/validation"
)

// Ficheros esperados dentro del directorio de datos.
const (
	UsersFile     = "users.json"
	BootcampsFile = "bootcamps.json"
	CoursesFile   = "courses.json"
	ReviewsFile   = "reviews.json"
)

type BootcampWriter interface {
	Create(ctx context.Context, b *bootcampDomain.Bootcamp, evt sharedDomain.OutboxEvent) error
}

type CourseWriter interface {
	Create(ctx context.Context, c *courseDomain.Course, evt sharedDomain.OutboxEvent) error
}

type ReviewWriter interface {
	Create(ctx context.Context, r *reviewDomain.Review, evt sharedDomain.OutboxEvent) error
}

type UserWriter interface {
	Create(ctx context.Context, u *userDomain.User, evt sharedDomain.OutboxEvent) error
}

// Purger vacía un almacén completo; lo implementa cada base de datos.
type Purger interface {
	Purge(ctx context.Context) error
}

// Stats cuenta lo insertado por tipo.
type Stats struct {
	Users     int
	Bootcamps int
	Courses   int
	Reviews   int
}

type Seeder struct {
	Users     UserWriter
	Bootcamps BootcampWriter
	Courses   CourseWriter
	Reviews   ReviewWriter
	Purgers   []Purger
	Log       *zap.Logger
}

// userFixture incluye la contraseña en claro, que se cifra al importar.
type userFixture struct {
	ID       uuid.UUID `json:"_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Password string    `json:"password"`
}

// Import carga los ficheros presentes en dir. Los que falten se saltan.
// Se importan primero usuarios y bootcamps para que cursos y reseñas tengan a quién apuntar.
func (s *Seeder) Import(ctx context.Context, dir string) (Stats, error) {
	var stats Stats
	now := time.Now().UTC()

	var users []userFixture
	if err := s.load(dir, UsersFile, &users); err != nil {
		return stats, err
	}
	for _, f := range users {
		u, err := userDomain.NewUser(userDomain.RegisterInput{Name: f.Name, Email: f.Email, Role: f.Role, Password: f.Password})
		if err != nil {
			return stats, fmt.Errorf("user %s: %w", f.Email, err)
		}
		if f.ID != uuid.Nil {
			u.ID = f.ID
		}
		evt := sharedDomain.NewOutboxEvent("user", u.ID.String(), userDomain.UserCreated, u.ToEvent())
		if err := s.Users.Create(ctx, u, evt); err != nil {
			return stats, fmt.Errorf("user %s: %w", f.Email, err)
		}
		stats.Users++
	}

	var bootcamps []*bootcampDomain.Bootcamp
	if err := s.load(dir, BootcampsFile, &bootcamps); err != nil {
		return stats, err
	}
	for _, b := range bootcamps {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		if b.Slug == "" {
			b.Slug = sharedValidation.Slugify(b.Name)
		}
		if b.Photo == "" {
			b.Photo = bootcampDomain.DefaultPhoto
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if err := b.Validate(); err != nil {
			return stats, fmt.Errorf("bootcamp %s: %w", b.Name, err)
		}
		evt := sharedDomain.NewOutboxEvent("bootcamp", b.ID.String(), bootcampDomain.BootcampCreated, b.ToEvent())
		if err := s.Bootcamps.Create(ctx, b, evt); err != nil {
			return stats, fmt.Errorf("bootcamp %s: %w", b.Name, err)
		}
		stats.Bootcamps++
	}

	var courses []*courseDomain.Course
	if err := s.load(dir, CoursesFile, &courses); err != nil {
		return stats, err
	}
	for _, c := range courses {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if err := c.Validate(); err != nil {
			return stats, fmt.Errorf("course %s: %w", c.Title, err)
		}
		evt := sharedDomain.NewOutboxEvent("course", c.ID.String(), courseDomain.CourseCreated, c.ToEvent())
		if err := s.Courses.Create(ctx, c, evt); err != nil {
			return stats, fmt.Errorf("course %s: %w", c.Title, err)
		}
		stats.Courses++
	}

	var reviews []*reviewDomain.Review
	if err := s.load(dir, ReviewsFile, &reviews); err != nil {
		return stats, err
	}
	for _, r := range reviews {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if err := r.Validate(); err != nil {
			return stats, fmt.Errorf("review %s: %w", r.Title, err)
		}
		evt := sharedDomain.NewOutboxEvent("review", r.ID.String(), reviewDomain.ReviewCreated, r.ToEvent())
		if err := s.Reviews.Create(ctx, r, evt); err != nil {
			return stats, fmt.Errorf("review %s: %w", r.Title, err)
		}
		stats.Reviews++
	}

	s.Log.Info("Data imported",
		zap.Int("users", stats.Users),
		zap.Int("bootcamps", stats.Bootcamps),
		zap.Int("courses", stats.Courses),
		zap.Int("reviews", stats.Reviews),
	)
	return stats, nil
}

// Destroy vacía todos los almacenes configurados.
func (s *Seeder) Destroy(ctx context.Context) error {
	var errs []error
	for _, p := range s.Purgers {
		if err := p.Purge(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.Log.Info("Data destroyed")
	return nil
}

func (s *Seeder) load(dir, name string, dest interface{}) error {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		s.Log.Warn("Seed file not found, skipping", zap.String("file", name))
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
