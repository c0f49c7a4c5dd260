package board

import (
	"context"
	"strings"

	"taskboard/domain"
)

// CreateContact validates the form and appends a new contact with derived
// initials and icon color.
func (s *Session) CreateContact(ctx context.Context, form domain.ContactForm) ([]domain.FieldError, error) {
	if errs := domain.CheckContactForm(form); len(errs) > 0 {
		return errs, nil
	}
	contact := domain.Contact{
		Name:  strings.TrimSpace(form.Name),
		Email: strings.TrimSpace(form.Email),
		Phone: strings.TrimSpace(form.Phone),
	}
	contact.Derive()

	err := s.coord.WithExclusiveWrite(ctx, contactsKey, func(ctx context.Context) error {
		_, appendErr := s.gw.Append(ctx, "contacts", contact)
		return appendErr
	})
	if err != nil {
		return nil, err
	}
	s.notices.Success("Contact successfully created")
	return nil, nil
}

// SaveContact patches an edited contact. Initials and icon color are
// always re-derived from the new name so the cached display fields never
// drift from it.
func (s *Session) SaveContact(ctx context.Context, id string, form domain.ContactForm) ([]domain.FieldError, error) {
	if errs := domain.CheckContactForm(form); len(errs) > 0 {
		return errs, nil
	}
	name := strings.TrimSpace(form.Name)
	fields := map[string]any{
		"name":      name,
		"email":     strings.TrimSpace(form.Email),
		"phone":     strings.TrimSpace(form.Phone),
		"initials":  domain.Initials(name),
		"iconColor": domain.IconColor(name),
	}

	err := s.coord.WithExclusiveWrite(ctx, contactsKey, func(ctx context.Context) error {
		return s.gw.Patch(ctx, "contacts/"+id, fields)
	})
	if err != nil {
		return nil, err
	}
	s.notices.Success("Contact updated")
	return nil, nil
}

// DeleteContact removes a contact. Tasks referencing it keep the dangling
// id until the render layer reports it and the repair worker drops it.
func (s *Session) DeleteContact(ctx context.Context, id string) error {
	err := s.coord.WithExclusiveWrite(ctx, contactsKey, func(ctx context.Context) error {
		return s.gw.Delete(ctx, "contacts/"+id)
	})
	if err != nil {
		return err
	}
	s.notices.Success("Contact deleted")
	return nil
}
