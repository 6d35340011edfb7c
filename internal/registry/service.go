// Package registry implements the guest claim workflow and the admin
// management operations on top of the catalogue store.
//
// Every operation issues its store call first and touches the in-memory
// reflection only after the store acknowledged it.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/giftlist/internal/catalogue"
	"github.com/MrSnakeDoc/giftlist/internal/domain"
	"github.com/MrSnakeDoc/giftlist/internal/images"
	"github.com/MrSnakeDoc/giftlist/internal/logger"
	"github.com/MrSnakeDoc/giftlist/internal/metrics"
	"github.com/MrSnakeDoc/giftlist/internal/store"
)

// Store operation names, used in RemoteError and metrics.
const (
	OpLoad    = "fetch_all"
	OpClaim   = "claim"
	OpAdd     = "insert_one"
	OpBulkAdd = "insert_many"
	OpRemove  = "delete_by_id"
	OpRelease = "release"
)

type Service struct {
	repo   store.Repository
	refl   *catalogue.Reflection
	log    logger.Logger
	m      *metrics.Metrics
	locale language.Tag

	claimGuard  bool
	placeholder func() string
}

type Option func(*Service)

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.m = m }
}

func WithLocale(tag language.Tag) Option {
	return func(s *Service) { s.locale = tag }
}

// WithClaimGuard makes claims conditional on the gift still being
// available in the store. Off means last writer wins.
func WithClaimGuard(on bool) Option {
	return func(s *Service) { s.claimGuard = on }
}

// WithPlaceholder overrides the image URL given to gifts added without one.
func WithPlaceholder(f func() string) Option {
	return func(s *Service) { s.placeholder = f }
}

// New creates the registry service. The claim guard is on by default.
func New(repo store.Repository, refl *catalogue.Reflection, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		refl:       refl,
		log:        logger.NewNop(),
		locale:     catalogue.DefaultLocale,
		claimGuard: true,
		placeholder: func() string {
			return images.PlaceholderURL(time.Now())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.refl == nil {
		s.refl = catalogue.NewReflection()
	}
	return s
}

// Reflection exposes the in-memory catalogue for readiness checks.
func (s *Service) Reflection() *catalogue.Reflection { return s.refl }

// Locale returns the collation tag used for ordering.
func (s *Service) Locale() language.Tag { return s.locale }

// ClaimGuard reports whether claims are conditional on the stored status.
func (s *Service) ClaimGuard() bool { return s.claimGuard }

// ─────────────────────────────────────────────────────────────────
// Catalogue view
// ─────────────────────────────────────────────────────────────────

// Page is one projected page of the catalogue.
type Page struct {
	Items      []domain.Gift `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Total      int           `json:"total"`
	PageSize   int           `json:"pageSize"`
}

// maxLoadAttempts bounds the re-fetches when writes keep landing while a
// reload reads the store.
const maxLoadAttempts = 3

// ErrCatalogueChanged is returned by Load when every attempt raced with a
// write. The reflection keeps its patched state.
var ErrCatalogueChanged = errors.New("catalogue changed during reload")

// Load replaces the reflection with a fresh read of the whole store. The
// read is discarded when a write was reflected while it was in flight.
func (s *Service) Load(ctx context.Context) error {
	started := time.Now()
	for attempt := 1; attempt <= maxLoadAttempts; attempt++ {
		gen := s.refl.Generation()

		fetched := time.Now()
		recs, err := s.repo.FetchAll(ctx)
		s.m.StoreOp(OpLoad, fetched, err)
		if err != nil {
			s.m.Reload(err)
			return &domain.RemoteError{Op: OpLoad, Err: err}
		}

		if !s.refl.ReplaceIf(gen, store.ToGifts(recs)) {
			s.log.Debug("catalogue changed during reload, fetching again",
				logger.Int("attempt", attempt))
			continue
		}

		for _, rec := range recs {
			if !knownStatus(rec.Status) {
				s.log.Warn("unknown gift status in store, resolved from guest fields",
					logger.String("id", rec.ID),
					logger.String("status", rec.Status))
			}
		}
		s.m.Reload(nil)
		s.updateGauges()

		s.log.Debug("catalogue loaded",
			logger.Int("gifts", len(recs)),
			logger.Duration("took", time.Since(started)))
		return nil
	}

	s.m.Reload(ErrCatalogueChanged)
	s.log.Warn("catalogue reload skipped, writes kept racing it",
		logger.Int("attempts", maxLoadAttempts))
	return ErrCatalogueChanged
}

// Page projects the requested page after clamping it to the valid range.
func (s *Service) Page(page int) Page {
	gifts := s.refl.Snapshot()
	total := catalogue.TotalPages(len(gifts))
	page = catalogue.ClampPage(page, total)

	items, _ := catalogue.Project(gifts, page, s.locale)
	return Page{
		Items:      items,
		Page:       page,
		TotalPages: total,
		Total:      len(gifts),
		PageSize:   catalogue.PageSize,
	}
}

// Gifts returns the whole catalogue in display order.
func (s *Service) Gifts() []domain.Gift {
	return catalogue.Sorted(s.refl.Snapshot(), s.locale)
}

// Counts returns the number of available and claimed gifts.
func (s *Service) Counts() (available, claimed int) {
	return s.refl.Counts()
}

// ─────────────────────────────────────────────────────────────────
// Claim workflow
// ─────────────────────────────────────────────────────────────────

// SubmitClaim validates the guest input and records the claim with a
// single store update. Nothing is retried.
func (s *Service) SubmitClaim(ctx context.Context, id, name, phone string) (domain.Gift, error) {
	name, phone, err := domain.ValidateClaim(name, phone)
	if err != nil {
		s.m.Claim(metrics.OutcomeInvalid)
		return domain.Gift{}, err
	}

	current, ok := s.refl.Get(id)
	if !ok {
		s.m.Claim(metrics.OutcomeNotFound)
		return domain.Gift{}, domain.ErrNotFound
	}
	if !current.IsAvailable() {
		s.m.Claim(metrics.OutcomeConflict)
		return domain.Gift{}, domain.ErrAlreadyClaimed
	}

	started := time.Now()
	rec, err := s.repo.UpdateByID(ctx, id, store.ClaimUpdate(name, phone, s.claimGuard))
	s.m.StoreOp(OpClaim, started, err)
	if err != nil {
		rerr := remoteError(OpClaim, err)
		switch {
		case errors.Is(rerr, domain.ErrAlreadyClaimed):
			s.m.Claim(metrics.OutcomeConflict)
			s.log.Info("claim lost to a concurrent claim", logger.String("id", id))
		case errors.Is(rerr, domain.ErrNotFound):
			s.m.Claim(metrics.OutcomeNotFound)
		default:
			s.m.Claim(metrics.OutcomeRemoteErr)
			s.log.Error("claim failed", logger.String("id", id), logger.Error(err))
		}
		return domain.Gift{}, rerr
	}

	claimed := store.ToGift(rec)
	s.refl.Patch(claimed)
	s.updateGauges()
	s.m.Claim(metrics.OutcomeOK)

	s.log.Info("gift claimed",
		logger.String("id", claimed.ID),
		logger.String("gift", claimed.Name))
	return claimed, nil
}

// ─────────────────────────────────────────────────────────────────
// Admin management
// ─────────────────────────────────────────────────────────────────

// NewItem is the admin input for a gift to add.
type NewItem struct {
	Name     string `json:"name" yaml:"name"`
	ImageURL string `json:"imageUrl,omitempty" yaml:"image_url"`
	Category string `json:"category,omitempty" yaml:"category"`
}

// AddItem inserts one available gift and prepends it to the reflection.
func (s *Service) AddItem(ctx context.Context, item NewItem) (domain.Gift, error) {
	rec, err := s.newRecord(item, "name")
	if err != nil {
		return domain.Gift{}, err
	}

	started := time.Now()
	out, err := s.repo.InsertOne(ctx, rec)
	s.m.StoreOp(OpAdd, started, err)
	if err != nil {
		s.log.Error("add gift failed", logger.String("name", rec.Name), logger.Error(err))
		return domain.Gift{}, remoteError(OpAdd, err)
	}

	g := store.ToGift(out)
	s.refl.Prepend(g)
	s.updateGauges()

	s.log.Info("gift added", logger.String("id", g.ID), logger.String("name", g.Name))
	return g, nil
}

// BulkAdd inserts all items in one batch, then reloads the whole catalogue
// so ids and order come from the store.
func (s *Service) BulkAdd(ctx context.Context, items []NewItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	recs := make([]store.Record, 0, len(items))
	for i, item := range items {
		rec, err := s.newRecord(item, fmt.Sprintf("items[%d].name", i))
		if err != nil {
			return 0, err
		}
		recs = append(recs, rec)
	}

	started := time.Now()
	out, err := s.repo.InsertMany(ctx, recs)
	s.m.StoreOp(OpBulkAdd, started, err)
	if err != nil {
		s.log.Error("bulk add failed", logger.Int("items", len(recs)), logger.Error(err))
		return 0, remoteError(OpBulkAdd, err)
	}

	if err := s.Load(ctx); err != nil {
		// The batch is stored; reflect it locally until the next reload.
		s.log.Warn("reload after bulk add failed, reflecting batch locally",
			logger.Int("items", len(out)),
			logger.Error(err))
		for i := len(out) - 1; i >= 0; i-- {
			g := store.ToGift(out[i])
			if _, ok := s.refl.Get(g.ID); ok {
				continue
			}
			s.refl.Prepend(g)
		}
		s.updateGauges()
	}

	s.log.Info("gifts bulk added", logger.Int("items", len(out)))
	return len(out), nil
}

// RemoveItem deletes a gift. confirmed must be true.
func (s *Service) RemoveItem(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}

	started := time.Now()
	err := s.repo.DeleteByID(ctx, id)
	s.m.StoreOp(OpRemove, started, err)
	if err != nil {
		s.log.Error("remove gift failed", logger.String("id", id), logger.Error(err))
		return remoteError(OpRemove, err)
	}

	s.refl.Remove(id)
	s.updateGauges()

	s.log.Info("gift removed", logger.String("id", id))
	return nil
}

// ReleaseItem puts a claimed gift back to available and clears the
// claimant. Releasing an available gift is a no-op write. confirmed must
// be true.
func (s *Service) ReleaseItem(ctx context.Context, id string, confirmed bool) (domain.Gift, error) {
	if !confirmed {
		return domain.Gift{}, domain.ErrConfirmationRequired
	}

	started := time.Now()
	rec, err := s.repo.UpdateByID(ctx, id, store.ReleaseUpdate())
	s.m.StoreOp(OpRelease, started, err)
	if err != nil {
		s.log.Error("release gift failed", logger.String("id", id), logger.Error(err))
		return domain.Gift{}, remoteError(OpRelease, err)
	}

	g := store.ToGift(rec)
	s.refl.Patch(g)
	s.updateGauges()

	s.log.Info("gift released", logger.String("id", id))
	return g, nil
}

// Claim is one line of the received-claims report.
type Claim struct {
	GiftID        string `json:"giftId"`
	GiftName      string `json:"giftName"`
	ClaimantName  string `json:"claimantName"`
	ClaimantPhone string `json:"claimantPhone"`
}

// Claims lists claimed gifts ordered by claimant, then gift name.
func (s *Service) Claims() []Claim {
	out := make([]Claim, 0)
	for _, g := range s.refl.Snapshot() {
		if g.IsAvailable() {
			continue
		}
		out = append(out, Claim{
			GiftID:        g.ID,
			GiftName:      g.Name,
			ClaimantName:  g.ClaimantName,
			ClaimantPhone: g.ClaimantPhone,
		})
	}

	col := collate.New(s.locale)
	sort.SliceStable(out, func(i, j int) bool {
		if c := col.CompareString(out[i].ClaimantName, out[j].ClaimantName); c != 0 {
			return c < 0
		}
		return col.CompareString(out[i].GiftName, out[j].GiftName) < 0
	})
	return out
}

// ─────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────

func (s *Service) newRecord(item NewItem, field string) (store.Record, error) {
	name, err := domain.ValidateItemName(item.Name)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			verr.Field = field
		}
		return store.Record{}, err
	}

	g := domain.Gift{
		Name:     name,
		ImageURL: trimmed(item.ImageURL),
		Category: trimmed(item.Category),
		Status:   domain.StatusAvailable,
	}
	if g.ImageURL == "" {
		g.ImageURL = s.placeholder()
	}
	return store.FromGift(g), nil
}

func trimmed(v string) string {
	return strings.TrimSpace(v)
}

func (s *Service) updateGauges() {
	s.m.Catalogue(s.refl.Counts())
}

// remoteError wraps a store failure, translating store sentinels to the
// domain ones callers match on.
func remoteError(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrPreconditionFailed):
		err = fmt.Errorf("%w: %w", domain.ErrAlreadyClaimed, err)
	case errors.Is(err, store.ErrNotFound):
		err = fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return &domain.RemoteError{Op: op, Err: err}
}

func knownStatus(s string) bool {
	switch s {
	case store.StatusAvailable, store.StatusSelected, string(domain.StatusClaimed):
		return true
	}
	return false
}
