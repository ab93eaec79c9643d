// Package catalog manages the items members offer and the owner dashboards.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// ItemInput is what a member submits when posting or editing an item.
type ItemInput struct {
	Name        string         `json:"name" validate:"required,max=120"`
	Description string         `json:"description" validate:"required,max=4000"`
	Category    string         `json:"category" validate:"required,max=60"`
	Urgency     string         `json:"urgency" validate:"omitempty,oneof=NORMAL URGENT"`
	Type        model.ItemType `json:"type" validate:"required,oneof=LEND SELL"`
}

// Filter narrows Browse. Status defaults to AVAILABLE.
type Filter struct {
	Status   model.ItemStatus
	Type     model.ItemType
	Category string
	Urgency  string
}

// Service posts, edits and lists items.
type Service struct {
	db       *sql.DB
	sink     lending.Sink
	validate *validator.Validate
	log      zerolog.Logger
}

// New returns a catalog service. Holders of open requests are told about
// item changes through sink.
func New(db *sql.DB, sink lending.Sink, log zerolog.Logger) *Service {
	return &Service{
		db:       db,
		sink:     sink,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// Create posts a new available item owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID int64, in ItemInput) (*model.Item, error) {
	in = normalize(in)
	if err := s.check(in); err != nil {
		return nil, err
	}

	owner, err := store.GetUser(ctx, s.db, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil || owner.DeletedAt != nil {
		return nil, fmt.Errorf("%w: member %d", lending.ErrNotFound, ownerID)
	}

	return store.CreateItem(ctx, s.db, &model.Item{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Urgency:     in.Urgency,
		Type:        in.Type,
		OwnerID:     ownerID,
	})
}

// Get returns a live item.
func (s *Service) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.DeletedAt != nil {
		return nil, fmt.Errorf("%w: item %d", lending.ErrNotFound, id)
	}
	return item, nil
}

// Update edits an item's description. Only the owner may do so, and the
// item's type cannot change. Members with open requests are notified.
func (s *Service) Update(ctx context.Context, actorID, id int64, in ItemInput) (*model.Item, error) {
	in = normalize(in)

	var item *model.Item
	var open []model.Request
	err := store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		item, err = s.owned(ctx, tx, actorID, id, "update")
		if err != nil {
			return err
		}
		if in.Type == "" {
			in.Type = item.Type
		}
		if in.Type != item.Type {
			return fmt.Errorf("%w: item type cannot change", lending.ErrValidation)
		}
		if err := s.check(in); err != nil {
			return err
		}

		if err := store.UpdateItem(ctx, tx, id, in.Name, in.Description, in.Category, in.Urgency); err != nil {
			return err
		}
		if item, err = store.GetItem(ctx, tx, id); err != nil {
			return err
		}
		open, err = store.ListOpenRequestsForItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, r := range open {
		s.emit(ctx, model.Notification{
			RecipientID:      r.RequesterID,
			Type:             model.NotificationItemUpdated,
			Message:          fmt.Sprintf("Item '%s' has been updated by the owner", item.Name),
			RelatedItemID:    &item.ID,
			RelatedRequestID: &r.ID,
		})
	}
	return item, nil
}

// Delete soft-deletes an item. Only the owner may do so. Members with open
// requests are notified.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	var item *model.Item
	var open []model.Request
	err := store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		item, err = s.owned(ctx, tx, actorID, id, "delete")
		if err != nil {
			return err
		}
		if open, err = store.ListOpenRequestsForItem(ctx, tx, id); err != nil {
			return err
		}
		return store.DeleteItem(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	for _, r := range open {
		s.emit(ctx, model.Notification{
			RecipientID:      r.RequesterID,
			Type:             model.NotificationItemDeleted,
			Message:          fmt.Sprintf("Item '%s' has been deleted by the owner", item.Name),
			RelatedRequestID: &r.ID,
		})
	}
	return nil
}

// Browse lists live items matching f.
func (s *Service) Browse(ctx context.Context, f Filter) ([]model.Item, error) {
	status := f.Status
	if status == "" {
		status = model.ItemStatusAvailable
	}
	return store.ListItems(ctx, s.db, store.ItemFilter{
		Statuses: []model.ItemStatus{status},
		Type:     f.Type,
		Category: f.Category,
		Urgency:  f.Urgency,
	})
}

// SetPhoto replaces an item's photo. Only the owner may do so.
func (s *Service) SetPhoto(ctx context.Context, actorID, id int64, data []byte, mime string) error {
	if _, err := s.owned(ctx, s.db, actorID, id, "change the photo of"); err != nil {
		return err
	}
	return store.SetItemImage(ctx, s.db, id, data, mime)
}

// Photo returns a live item's photo and its MIME type.
func (s *Service) Photo(ctx context.Context, id int64) ([]byte, string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, "", err
	}
	data, mime, err := store.GetItemImage(ctx, s.db, id)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		return nil, "", fmt.Errorf("%w: item %d has no photo", lending.ErrNotFound, id)
	}
	return data, mime, nil
}

func (s *Service) owned(ctx context.Context, db store.DBTX, actorID, id int64, action string) (*model.Item, error) {
	item, err := store.GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.DeletedAt != nil {
		return nil, fmt.Errorf("%w: item %d", lending.ErrNotFound, id)
	}
	if item.OwnerID != actorID {
		return nil, fmt.Errorf("%w: only the owner can %s this item", lending.ErrForbidden, action)
	}
	return item, nil
}

// emit hands a notification to the sink. The change is already committed,
// so failures are only logged.
func (s *Service) emit(ctx context.Context, n model.Notification) {
	if err := s.sink.Emit(ctx, n); err != nil {
		s.log.Warn().Err(err).
			Str("type", string(n.Type)).
			Int64("recipient", n.RecipientID).
			Msg("notification dropped")
	}
}

func (s *Service) check(in ItemInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating item: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", lending.ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

func normalize(in ItemInput) ItemInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Urgency = strings.ToUpper(strings.TrimSpace(in.Urgency))
	if in.Urgency == "" {
		in.Urgency = model.DefaultUrgency
	}
	return in
}
