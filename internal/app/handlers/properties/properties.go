package properties

import (
	"context"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainproperties "staybook/internal/domain/properties"
)

type ListPropertiesQuery struct {
	PublishedOnly bool
}

func (q ListPropertiesQuery) Key() string { return "properties.list" }

type ListPropertiesHandler struct {
	Factory uow.Factory
}

func (h *ListPropertiesHandler) Handle(ctx context.Context, query ListPropertiesQuery) ([]dto.PropertyView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if owned {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	items, err := unit.Properties().List(ctx, query.PublishedOnly)
	if err != nil {
		return nil, err
	}
	return dto.MapProperties(items), nil
}

// GetPropertyQuery resolves by slug when Slug is set, otherwise by ID.
type GetPropertyQuery struct {
	PropertyID string
	Slug       string
}

func (q GetPropertyQuery) Key() string { return "properties.get" }

type GetPropertyHandler struct {
	Factory uow.Factory
}

func (h *GetPropertyHandler) Handle(ctx context.Context, query GetPropertyQuery) (dto.PropertyView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.PropertyView{}, err
	}
	if owned {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	var property *domainproperties.Property
	if query.Slug != "" {
		property, err = unit.Properties().BySlug(ctx, query.Slug)
	} else {
		property, err = unit.Properties().ByID(ctx, domainproperties.PropertyID(query.PropertyID))
	}
	if err != nil {
		return dto.PropertyView{}, err
	}
	return dto.MapProperty(property), nil
}

type CreatePropertyCommand struct {
	Slug       string
	Name       string
	Summary    string
	Headline   string
	MaxGuests  int
	Bedrooms   int
	Bathrooms  int
	Amenities  []string
	HouseRules []string
}

func (c CreatePropertyCommand) Key() string { return "properties.create" }

type CreatePropertyHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *CreatePropertyHandler) Handle(ctx context.Context, cmd CreatePropertyCommand) (dto.PropertyView, error) {
	property, err := domainproperties.New(domainproperties.CreateParams{
		ID:         domainproperties.PropertyID(uuid.NewString()),
		Slug:       cmd.Slug,
		Name:       cmd.Name,
		Summary:    cmd.Summary,
		Headline:   cmd.Headline,
		MaxGuests:  cmd.MaxGuests,
		Bedrooms:   cmd.Bedrooms,
		Bathrooms:  cmd.Bathrooms,
		Amenities:  cmd.Amenities,
		HouseRules: cmd.HouseRules,
		Now:        clockOrNow(h.Now),
	})
	if err != nil {
		return dto.PropertyView{}, err
	}
	return saveAndDrain(ctx, h.Factory, h.Outbox, h.Encoder, property)
}

type UpdatePropertyCommand struct {
	PropertyID string
	Name       string
	Summary    string
	Headline   string
	MaxGuests  int
	Amenities  []string
	HouseRules []string
}

func (c UpdatePropertyCommand) Key() string { return "properties.update" }

type UpdatePropertyHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *UpdatePropertyHandler) Handle(ctx context.Context, cmd UpdatePropertyCommand) (dto.PropertyView, error) {
	return mutateProperty(ctx, h.Factory, h.Outbox, h.Encoder, cmd.PropertyID, func(p *domainproperties.Property) error {
		return p.UpdateContent(cmd.Name, cmd.Summary, cmd.Headline, cmd.MaxGuests, cmd.Amenities, cmd.HouseRules, clockOrNow(h.Now))
	})
}

type PublishPropertyCommand struct {
	PropertyID string
}

func (c PublishPropertyCommand) Key() string { return "properties.publish" }

type PublishPropertyHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *PublishPropertyHandler) Handle(ctx context.Context, cmd PublishPropertyCommand) (dto.PropertyView, error) {
	return mutateProperty(ctx, h.Factory, h.Outbox, h.Encoder, cmd.PropertyID, func(p *domainproperties.Property) error {
		return p.Publish(clockOrNow(h.Now))
	})
}

type ArchivePropertyCommand struct {
	PropertyID string
}

func (c ArchivePropertyCommand) Key() string { return "properties.archive" }

type ArchivePropertyHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *ArchivePropertyHandler) Handle(ctx context.Context, cmd ArchivePropertyCommand) (dto.PropertyView, error) {
	return mutateProperty(ctx, h.Factory, h.Outbox, h.Encoder, cmd.PropertyID, func(p *domainproperties.Property) error {
		return p.Archive(clockOrNow(h.Now))
	})
}

type AttachPhotoCommand struct {
	PropertyID string
	URL        string
}

func (c AttachPhotoCommand) Key() string { return "properties.attach_photo" }

type AttachPhotoHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *AttachPhotoHandler) Handle(ctx context.Context, cmd AttachPhotoCommand) (dto.PropertyView, error) {
	return mutateProperty(ctx, h.Factory, h.Outbox, h.Encoder, cmd.PropertyID, func(p *domainproperties.Property) error {
		p.AttachPhoto(cmd.URL, clockOrNow(h.Now))
		return nil
	})
}

func mutateProperty(ctx context.Context, factory uow.Factory, box outbox.Outbox, encoder outbox.EventEncoder, id string, mutate func(*domainproperties.Property) error) (dto.PropertyView, error) {
	ctx, unit, owned, err := uow.Require(ctx, factory, uow.TxOptions{})
	if err != nil {
		return dto.PropertyView{}, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}
	property, err := unit.Properties().ByID(ctx, domainproperties.PropertyID(id))
	if err != nil {
		return dto.PropertyView{}, err
	}
	if err := mutate(property); err != nil {
		return dto.PropertyView{}, err
	}
	if err := unit.Properties().Save(ctx, property); err != nil {
		return dto.PropertyView{}, err
	}
	if err := outbox.Drain(ctx, box, encoder, &property.EventRecorder); err != nil {
		return dto.PropertyView{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.PropertyView{}, err
		}
		committed = true
	}
	return dto.MapProperty(property), nil
}

func saveAndDrain(ctx context.Context, factory uow.Factory, box outbox.Outbox, encoder outbox.EventEncoder, property *domainproperties.Property) (dto.PropertyView, error) {
	ctx, unit, owned, err := uow.Require(ctx, factory, uow.TxOptions{})
	if err != nil {
		return dto.PropertyView{}, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}
	if err := unit.Properties().Save(ctx, property); err != nil {
		return dto.PropertyView{}, err
	}
	if err := outbox.Drain(ctx, box, encoder, &property.EventRecorder); err != nil {
		return dto.PropertyView{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.PropertyView{}, err
		}
		committed = true
	}
	return dto.MapProperty(property), nil
}

func clockOrNow(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

var (
	_ queries.Handler[ListPropertiesQuery, []dto.PropertyView]   = (*ListPropertiesHandler)(nil)
	_ queries.Handler[GetPropertyQuery, dto.PropertyView]        = (*GetPropertyHandler)(nil)
	_ commands.Handler[CreatePropertyCommand, dto.PropertyView]  = (*CreatePropertyHandler)(nil)
	_ commands.Handler[UpdatePropertyCommand, dto.PropertyView]  = (*UpdatePropertyHandler)(nil)
	_ commands.Handler[PublishPropertyCommand, dto.PropertyView] = (*PublishPropertyHandler)(nil)
	_ commands.Handler[ArchivePropertyCommand, dto.PropertyView] = (*ArchivePropertyHandler)(nil)
	_ commands.Handler[AttachPhotoCommand, dto.PropertyView]     = (*AttachPhotoHandler)(nil)
)
