package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/metrics"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Public listings served from the catalog cache.
const (
	ListingApproved = "approved"
	ListingPopular  = "popular"
	ListingLatest   = "latest"

	// FeaturedLimit is the size of the popular and latest listings.
	FeaturedLimit = 6
)

var listingQueries = map[string]model.ClassQuery{
	ListingApproved: {Status: model.ClassStatusApproved, Sort: model.ClassSortOldest},
	ListingPopular:  {Status: model.ClassStatusApproved, Sort: model.ClassSortMostStudents, Limit: FeaturedLimit},
	ListingLatest:   {Status: model.ClassStatusApproved, Sort: model.ClassSortNewest, Limit: FeaturedLimit},
}

// ClassService handles catalog business logic.
type ClassService struct {
	classes ClassStore
	cache   CatalogCache
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewClassService creates a new ClassService. cache may be nil, in which case
// every listing is read from the store.
func NewClassService(classes ClassStore, cache CatalogCache, m *metrics.Metrics, log zerolog.Logger) *ClassService {
	return &ClassService{
		classes: classes,
		cache:   cache,
		metrics: m,
		log:     log.With().Str("component", "class_service").Logger(),
	}
}

// Listing returns one of the public listings (ListingApproved, ListingPopular, ListingLatest).
func (s *ClassService) Listing(ctx context.Context, name string) ([]model.Class, error) {
	q, ok := listingQueries[name]
	if !ok {
		return nil, fmt.Errorf("unknown listing %q", name)
	}

	if s.cache == nil {
		return s.list(ctx, name, q)
	}

	classes, hit, err := s.cache.GetListing(ctx, name)
	if err != nil {
		s.log.Warn().Err(err).Str("listing", name).Msg("catalog cache read failed")
	}
	s.metrics.ObserveCacheLookup(hit)
	if hit {
		return classes, nil
	}

	// The generation must be read before the store so a concurrent change
	// makes the write-back below a no-op.
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.log.Warn().Err(genErr).Str("listing", name).Msg("catalog cache generation read failed")
	}

	classes, err = s.list(ctx, name, q)
	if err != nil || genErr != nil {
		return classes, err
	}

	if _, err := s.cache.StoreListing(ctx, name, gen, classes); err != nil {
		s.log.Warn().Err(err).Str("listing", name).Msg("catalog cache write failed")
	}
	return classes, nil
}

func (s *ClassService) list(ctx context.Context, name string, q model.ClassQuery) ([]model.Class, error) {
	classes, err := s.classes.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s classes: %w", name, err)
	}
	return classes, nil
}

// Warm rebuilds every cached listing from the store.
func (s *ClassService) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		return fmt.Errorf("read catalog generation: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, q := range listingQueries {
		g.Go(func() error {
			classes, err := s.list(gctx, name, q)
			if err != nil {
				return err
			}
			stored, err := s.cache.StoreListing(gctx, name, gen, classes)
			if err == nil && !stored {
				s.log.Debug().Str("listing", name).Msg("catalog changed during warm, listing dropped")
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.log.Debug().Int("listings", len(listingQueries)).Msg("catalog cache warmed")
	return nil
}

// ListAll returns every class regardless of status.
func (s *ClassService) ListAll(ctx context.Context) ([]model.Class, error) {
	return s.classes.List(ctx, model.ClassQuery{Sort: model.ClassSortOldest})
}

// ListByInstructor returns the classes owned by an instructor.
func (s *ClassService) ListByInstructor(ctx context.Context, email string) ([]model.Class, error) {
	return s.classes.List(ctx, model.ClassQuery{InstructorEmail: NormalizeEmail(email), Sort: model.ClassSortOldest})
}

// Create adds a class owned by the given instructor. New classes always start
// pending with no students.
func (s *ClassService) Create(ctx context.Context, instructorEmail string, req model.CreateClassRequest) (*model.Class, error) {
	instructorEmail = NormalizeEmail(instructorEmail)
	instructorName := strings.TrimSpace(req.InstructorName)
	if instructorName == "" {
		instructorName = instructorEmail
	}

	price, err := ParsePrice(req.Price.String())
	if err != nil {
		return nil, err
	}
	seats, err := ParseSeats(req.AvailableSeats.String())
	if err != nil {
		return nil, err
	}

	c := &model.Class{
		Name:            req.Name,
		Image:           req.Image,
		InstructorName:  instructorName,
		InstructorEmail: instructorEmail,
		Status:          model.ClassStatusPending,
		Price:           price,
		AvailableSeats:  seats,
		Students:        0,
	}
	if err := s.classes.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}

	s.log.Info().Str("class_id", c.ID.String()).Str("instructor", c.InstructorEmail).Msg("class created")
	return c, nil
}

// Approve moves a pending class to approved.
func (s *ClassService) Approve(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	return s.transition(ctx, id, model.ClassStatusApproved)
}

// Deny moves a pending class to denied.
func (s *ClassService) Deny(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	return s.transition(ctx, id, model.ClassStatusDenied)
}

func (s *ClassService) transition(ctx context.Context, id uuid.UUID, to model.ClassStatus) (*model.Class, error) {
	if !model.ClassStatusPending.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}

	c, err := s.classes.TransitionStatus(ctx, id, model.ClassStatusPending, to)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("transition class: %w", err)
		}
		if _, gerr := s.classes.GetByID(ctx, id); gerr != nil {
			if errors.Is(gerr, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("get class: %w", gerr)
		}
		return nil, ErrInvalidTransition
	}

	s.log.Info().Str("class_id", id.String()).Str("status", string(to)).Msg("class status changed")
	s.catalogChanged(ctx)
	return c, nil
}

// UpdatePriceAndSeats lets the owning instructor (or an admin) edit a class.
func (s *ClassService) UpdatePriceAndSeats(ctx context.Context, editorEmail string, editorRole model.Role, id uuid.UUID, req model.UpdateClassRequest) (*model.Class, error) {
	price, err := ParsePrice(req.Price.String())
	if err != nil {
		return nil, err
	}
	seats, err := ParseSeats(req.AvailableSeats.String())
	if err != nil {
		return nil, err
	}

	current, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	if editorRole != model.RoleAdmin && current.InstructorEmail != NormalizeEmail(editorEmail) {
		return nil, ErrForbidden
	}

	c, err := s.classes.UpdatePriceAndSeats(ctx, id, price, seats)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update class: %w", err)
	}

	s.catalogChanged(ctx)
	return c, nil
}

// AdjustSeats takes one seat and counts one student outside of a payment.
func (s *ClassService) AdjustSeats(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	c, err := reserveSeat(ctx, s.classes, id)
	if err != nil {
		return nil, err
	}
	s.catalogChanged(ctx)
	return c, nil
}

// catalogChanged drops cached listings and asks the worker to rebuild them.
// Cache failures are logged; the store remains the source of truth.
func (s *ClassService) catalogChanged(ctx context.Context) {
	invalidateCatalog(ctx, s.cache, s.log)
}

func invalidateCatalog(ctx context.Context, cache CatalogCache, log zerolog.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
	if err := cache.RequestRefresh(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog refresh request failed")
	}
}

// reserveSeat performs the atomic seat decrement and tells a missing class
// apart from a full one.
func reserveSeat(ctx context.Context, classes ClassStore, id uuid.UUID) (*model.Class, error) {
	c, err := classes.ReserveSeat(ctx, id)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("reserve seat: %w", err)
	}

	if _, gerr := classes.GetByID(ctx, id); gerr != nil {
		if errors.Is(gerr, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get class: %w", gerr)
	}
	return nil, ErrClassFull
}
