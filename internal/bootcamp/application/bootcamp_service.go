package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedCache "github.com/davicafu/devcamper/shared/platform/cache"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
	sharedUtils "github.com/davicafu/devcamper/shared/utils"
)

const (
	aggregateType = "bootcamp"
	// 0 deja que el cache aplique su TTL configurado (CACHE_TTL).
	cacheTTL = 0
)

// CoursesPopulate incrusta los cursos de cada bootcamp en los listados.
var CoursesPopulate = sharedQuery.Populate{
	Path:         "courses",
	From:         "courses",
	LocalField:   sharedQuery.IDField,
	ForeignField: "bootcamp",
	Many:         true,
}

// Photo es el fichero subido por el cliente.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Deps agrupa los colaboradores del servicio. Geocoder y Photos son opcionales.
type Deps struct {
	Repo         bootcampDomain.BootcampRepository
	Averages     bootcampDomain.AveragesReader
	Listing      sharedQuery.Collection
	Geocoder     bootcampDomain.Geocoder
	Photos       bootcampDomain.PhotoStorage
	Cache        sharedCache.Cache
	MaxPhotoSize int64
}

// BootcampService define los casos de uso relacionados con Bootcamp.
type BootcampService struct {
	repo         bootcampDomain.BootcampRepository
	averages     bootcampDomain.AveragesReader
	listing      sharedQuery.Collection
	geocoder     bootcampDomain.Geocoder
	photos       bootcampDomain.PhotoStorage
	cache        sharedCache.Cache
	maxPhotoSize int64
	log          *zap.Logger
}

func NewBootcampService(deps Deps, log *zap.Logger) *BootcampService {
	return &BootcampService{
		repo:         deps.Repo,
		averages:     deps.Averages,
		listing:      deps.Listing,
		geocoder:     deps.Geocoder,
		photos:       deps.Photos,
		cache:        deps.Cache,
		maxPhotoSize: deps.MaxPhotoSize,
		log:          log,
	}
}

func cacheKey(id uuid.UUID) string {
	return sharedCache.KeyByID(aggregateType, id.String())
}

func notFound(id uuid.UUID) error {
	return fmt.Errorf("%w with id of %s", bootcampDomain.ErrBootcampNotFound, id)
}

// ListBootcamps aplica el lenguaje de consulta y añade los cursos de cada bootcamp.
func (s *BootcampService) ListBootcamps(ctx context.Context, values url.Values) (*sharedQuery.Result, error) {
	return sharedQuery.Run(ctx, s.listing, values, CoursesPopulate)
}

// ExportBootcamps usa el mismo lenguaje de consulta que el listado, sin relaciones.
func (s *BootcampService) ExportBootcamps(ctx context.Context, values url.Values) ([]sharedQuery.Document, error) {
	res, err := sharedQuery.Run(ctx, s.listing, values)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// GetBootcamp obtiene un bootcamp, usando el patrón cache-aside con reintentos.
func (s *BootcampService) GetBootcamp(ctx context.Context, id uuid.UUID) (*bootcampDomain.Bootcamp, error) {
	// 1. Intentar obtener de la caché
	if s.cache != nil {
		var b bootcampDomain.Bootcamp
		if hit, _ := s.cache.Get(ctx, cacheKey(id), &b); hit {
			return &b, nil
		}
	}

	// 2. Si es 'miss', ir al repositorio con reintentos (el "no encontrado" no se reintenta)
	var bootcamp *bootcampDomain.Bootcamp
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		bootcamp, errRetry = s.repo.GetByID(ctx, id)
		if errors.Is(errRetry, bootcampDomain.ErrBootcampNotFound) {
			return sharedUtils.Permanent(errRetry)
		}
		return errRetry
	})
	if err != nil {
		if errors.Is(err, bootcampDomain.ErrBootcampNotFound) {
			s.log.Warn("Bootcamp not found", zap.String("bootcamp_id", id.String()))
			return nil, notFound(id)
		}
		s.log.Error("Failed to fetch bootcamp", zap.String("bootcamp_id", id.String()), zap.Error(err))
		return nil, err
	}

	// 3. Actualizar caché en segundo plano para la próxima vez
	sharedCache.AsyncCacheSet(s.cache, cacheKey(id), bootcamp, cacheTTL, s.log)
	return bootcamp, nil
}

// CreateBootcamp crea un bootcamp propiedad de p. Un publisher solo puede tener uno.
func (s *BootcampService) CreateBootcamp(ctx context.Context, p sharedDomain.Principal, in bootcampDomain.BootcampInput) (*bootcampDomain.Bootcamp, error) {
	if !p.IsAdmin() {
		n, err := s.repo.CountByOwner(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, sharedDomain.NewError(sharedDomain.ErrInvalid,
				fmt.Sprintf("The user with ID %s has already published a bootcamp", p.ID))
		}
	}

	bootcamp, err := bootcampDomain.NewBootcamp(p.ID, in)
	if err != nil {
		return nil, err
	}
	if err := s.locate(ctx, bootcamp); err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, bootcamp.ID.String(), bootcampDomain.BootcampCreated, bootcamp.ToEvent())
	if err := s.repo.Create(ctx, bootcamp, evt); err != nil {
		s.log.Error("Failed to create bootcamp", zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheSet(s.cache, cacheKey(bootcamp.ID), bootcamp, cacheTTL, s.log)
	return bootcamp, nil
}

// UpdateBootcamp aplica una actualización parcial. Solo el propietario o un admin.
func (s *BootcampService) UpdateBootcamp(ctx context.Context, p sharedDomain.Principal, id uuid.UUID, patch bootcampDomain.BootcampPatch) (*bootcampDomain.Bootcamp, error) {
	bootcamp, err := s.ownedBootcamp(ctx, p, id, "update")
	if err != nil {
		return nil, err
	}

	addressChanged, err := bootcamp.Apply(patch)
	if err != nil {
		return nil, err
	}
	if addressChanged {
		if err := s.locate(ctx, bootcamp); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, bootcamp); err != nil {
		return nil, err
	}
	return bootcamp, nil
}

// DeleteBootcamp elimina el bootcamp con sus cursos y reseñas.
func (s *BootcampService) DeleteBootcamp(ctx context.Context, p sharedDomain.Principal, id uuid.UUID) error {
	bootcamp, err := s.ownedBootcamp(ctx, p, id, "delete")
	if err != nil {
		return err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, id.String(), bootcampDomain.BootcampDeleted, bootcamp.ToEvent())
	if err := s.repo.DeleteCascade(ctx, id, evt); err != nil {
		if errors.Is(err, bootcampDomain.ErrBootcampNotFound) {
			return notFound(id)
		}
		return err
	}

	sharedCache.InvalidateNow(ctx, s.cache, cacheKey(id), s.log)
	return nil
}

// BootcampsInRadius devuelve los bootcamps a menos de distance millas del código postal.
func (s *BootcampService) BootcampsInRadius(ctx context.Context, zipcode string, distance float64) ([]*bootcampDomain.Bootcamp, error) {
	if distance < 0 {
		return nil, sharedDomain.NewError(sharedDomain.ErrInvalid, "Distance must be a positive number")
	}
	if s.geocoder == nil {
		return nil, errors.New("geocoder not configured")
	}

	loc, err := s.geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	lng, lat := loc.Coordinates[0], loc.Coordinates[1]

	bootcamps, err := s.repo.FindWithinRadius(ctx, lng, lat, bootcampDomain.RadiusFromMiles(distance))
	if err != nil {
		return nil, err
	}
	if bootcamps == nil {
		bootcamps = []*bootcampDomain.Bootcamp{}
	}
	return bootcamps, nil
}

// UploadPhoto guarda la imagen como photo_<id><ext> y actualiza el bootcamp.
func (s *BootcampService) UploadPhoto(ctx context.Context, p sharedDomain.Principal, id uuid.UUID, photo Photo) (string, error) {
	bootcamp, err := s.ownedBootcamp(ctx, p, id, "update")
	if err != nil {
		return "", err
	}

	if photo.Content == nil {
		return "", bootcampDomain.ErrPhotoRequired
	}
	if !strings.HasPrefix(photo.ContentType, "image/") {
		return "", bootcampDomain.ErrPhotoNotImage
	}
	if s.maxPhotoSize > 0 && photo.Size > s.maxPhotoSize {
		return "", sharedDomain.NewError(sharedDomain.ErrInvalid,
			fmt.Sprintf("Please upload an image less than %d", s.maxPhotoSize))
	}
	if s.photos == nil {
		return "", errors.New("photo storage not configured")
	}

	name := fmt.Sprintf("photo_%s%s", bootcamp.ID, strings.ToLower(filepath.Ext(photo.Filename)))
	stored, err := s.photos.Save(ctx, name, photo.Content, photo.Size, photo.ContentType)
	if err != nil {
		s.log.Error("Problem with file upload", zap.String("bootcamp_id", id.String()), zap.Error(err))
		return "", err
	}

	bootcamp.Photo = stored
	if err := s.save(ctx, bootcamp); err != nil {
		return "", err
	}
	return stored, nil
}

// RecalculateAverages recalcula averageCost y averageRating a partir de cursos y reseñas.
func (s *BootcampService) RecalculateAverages(ctx context.Context, id uuid.UUID) error {
	var cost, rating *float64

	avgTuition, ok, err := s.averages.AverageTuition(ctx, id)
	if err != nil {
		return fmt.Errorf("average tuition: %w", err)
	}
	if ok {
		v := bootcampDomain.RoundCost(avgTuition)
		cost = &v
	}

	avgRating, ok, err := s.averages.AverageRating(ctx, id)
	if err != nil {
		return fmt.Errorf("average rating: %w", err)
	}
	if ok {
		rating = &avgRating
	}

	if err := s.repo.SetAverages(ctx, id, cost, rating); err != nil {
		return err
	}
	sharedCache.InvalidateNow(ctx, s.cache, cacheKey(id), s.log)
	return nil
}

// --- helpers ---

func (s *BootcampService) ownedBootcamp(ctx context.Context, p sharedDomain.Principal, id uuid.UUID, action string) (*bootcampDomain.Bootcamp, error) {
	bootcamp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bootcampDomain.ErrBootcampNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	if !p.CanModify(bootcamp.User) {
		return nil, sharedDomain.NewError(sharedDomain.ErrForbidden,
			fmt.Sprintf("User %s is not authorized to %s this bootcamp", p.ID, action))
	}
	return bootcamp, nil
}

func (s *BootcampService) save(ctx context.Context, bootcamp *bootcampDomain.Bootcamp) error {
	evt := sharedDomain.NewOutboxEvent(aggregateType, bootcamp.ID.String(), bootcampDomain.BootcampUpdated, bootcamp.ToEvent())
	if err := s.repo.Update(ctx, bootcamp, evt); err != nil {
		if errors.Is(err, bootcampDomain.ErrBootcampNotFound) {
			return notFound(bootcamp.ID)
		}
		return err
	}
	sharedCache.InvalidateNow(ctx, s.cache, cacheKey(bootcamp.ID), s.log)
	return nil
}

// locate geocodifica la dirección; sin geocoder configurado el bootcamp queda sin location.
func (s *BootcampService) locate(ctx context.Context, b *bootcampDomain.Bootcamp) error {
	if s.geocoder == nil {
		return nil
	}
	loc, err := s.geocoder.Geocode(ctx, b.Address)
	if err != nil {
		return err
	}
	b.Location = loc
	return nil
}
