package service

import (
	"context"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/validation"

	"github.com/rs/zerolog"
)

type ItemCreate struct {
	Name        string `json:"name" validate:"notblank,max=255"`
	Description string `json:"description" validate:"notblank,max=1000"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId"`
}

// ItemPatch carries a partial update. Nil fields are left unchanged.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type ItemService struct {
	items    domain.ItemRepository
	bookings domain.BookingRepository
	comments domain.CommentRepository
	users    domain.UserRepository
	validate *validation.Validator
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewItemService(
	items domain.ItemRepository,
	bookings domain.BookingRepository,
	comments domain.CommentRepository,
	users domain.UserRepository,
	validate *validation.Validator,
	logger *zerolog.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		bookings: bookings,
		comments: comments,
		users:    users,
		validate: validate,
		clock:    time.Now,
		logger:   logger,
	}
}

func (s *ItemService) WithClock(clock domain.Clock) *ItemService {
	s.clock = clock
	return s
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, in ItemCreate) (*models.ItemView, error) {
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, notFoundOr(err, "User with id %d not found", ownerID)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	item := &models.Item{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Available:   *in.Available,
		OwnerID:     ownerID,
		RequestID:   in.RequestID,
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		s.logger.Error().Err(err).Int64("user_id", ownerID).Msg("failed to create item")
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("user_id", ownerID).Msg("item created")
	return models.NewItemView(item, models.ItemAvailability{}, nil), nil
}

// Update applies a patch. A caller who does not own the item gets NotFound.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch ItemPatch) (*models.ItemView, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, notFoundOr(err, "Item with id %d not found", itemID)
	}
	if item.OwnerID != ownerID {
		s.logger.Warn().Int64("item_id", itemID).Int64("user_id", ownerID).Str("reason", "not_owner").Msg("item update denied")
		return nil, domain.NotFound("Item with id %d not found", itemID)
	}

	if patch.Name != nil {
		if err := s.validate.Var("name", *patch.Name, "notblank,max=255"); err != nil {
			return nil, err
		}
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		if err := s.validate.Var("description", *patch.Description, "notblank,max=1000"); err != nil {
			return nil, err
		}
		item.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, notFoundOr(err, "Item with id %d not found", itemID)
	}

	return s.view(ctx, ownerID, item)
}

// Get returns the item with comments. Last and next bookings are shown to the owner only.
func (s *ItemService) Get(ctx context.Context, userID, itemID int64) (*models.ItemView, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, notFoundOr(err, "Item with id %d not found", itemID)
	}
	return s.view(ctx, userID, item)
}

func (s *ItemService) view(ctx context.Context, userID int64, item *models.Item) (*models.ItemView, error) {
	avail, err := s.ForItem(ctx, userID, item)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("item_id", item.ID).Msg("failed to load comments")
		return nil, err
	}

	return models.NewItemView(item, avail, commentViews(comments)), nil
}

// ListByOwner returns the owner's items with last/next bookings and comments,
// resolved with a fixed number of queries regardless of item count.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64) ([]*models.ItemView, error) {
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, notFoundOr(err, "User with id %d not found", ownerID)
	}

	items, err := s.items.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	avail, err := s.ForItems(ctx, ownerID, items)
	if err != nil {
		return nil, err
	}

	ids := itemIDs(items)
	comments, err := s.comments.GetCommentsByItems(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("items", len(ids)).Msg("failed to load comments")
		return nil, err
	}
	byItem := make(map[int64][]*models.CommentView, len(items))
	for _, c := range comments {
		byItem[c.ItemID] = append(byItem[c.ItemID], c.View())
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, models.NewItemView(item, avail[item.ID], byItem[item.ID]))
	}
	return views, nil
}

// Search finds available items whose name or description contains text.
// Blank text matches nothing.
func (s *ItemService) Search(ctx context.Context, text string) ([]*models.ItemView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*models.ItemView{}, nil
	}

	items, err := s.items.SearchAvailableItems(ctx, text)
	if err != nil {
		return nil, err
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, models.NewItemView(item, models.ItemAvailability{}, nil))
	}
	return views, nil
}

// ForItem finds the latest finished and the nearest upcoming approved booking
// of one item. Only the owner sees them; others get an empty result.
func (s *ItemService) ForItem(ctx context.Context, requesterID int64, item *models.Item) (models.ItemAvailability, error) {
	if item.OwnerID != requesterID {
		return models.ItemAvailability{}, nil
	}

	now := s.clock()
	last, err := s.bookings.LastApprovedBooking(ctx, item.ID, now)
	if err != nil {
		return models.ItemAvailability{}, err
	}
	next, err := s.bookings.NextApprovedBooking(ctx, item.ID, now)
	if err != nil {
		return models.ItemAvailability{}, err
	}
	return models.ItemAvailability{Last: last, Next: next}, nil
}

// ForItems resolves ForItem for many items of one owner with two queries.
// Items owned by someone else are left out of the result.
func (s *ItemService) ForItems(ctx context.Context, ownerID int64, items []*models.Item) (map[int64]models.ItemAvailability, error) {
	owned := make([]int64, 0, len(items))
	for _, item := range items {
		if item.OwnerID == ownerID {
			owned = append(owned, item.ID)
		}
	}

	result := make(map[int64]models.ItemAvailability, len(owned))
	if len(owned) == 0 {
		return result, nil
	}
	metrics.ObserveAggregationBatch(len(owned))

	now := s.clock()
	lasts, err := s.bookings.LastApprovedBookings(ctx, owned, now)
	if err != nil {
		return nil, err
	}
	nexts, err := s.bookings.NextApprovedBookings(ctx, owned, now)
	if err != nil {
		return nil, err
	}

	// rows arrive best-first per item, so the first one seen wins
	for _, b := range lasts {
		a := result[b.ItemID]
		if a.Last == nil {
			a.Last = b
			result[b.ItemID] = a
		}
	}
	for _, b := range nexts {
		a := result[b.ItemID]
		if a.Next == nil {
			a.Next = b
			result[b.ItemID] = a
		}
	}
	return result, nil
}

func itemIDs(items []*models.Item) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func commentViews(comments []*models.Comment) []*models.CommentView {
	views := make([]*models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, c.View())
	}
	return views
}
