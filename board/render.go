package board

import (
	"context"

	"taskboard/domain"
	"taskboard/view"
)

// RenderBoard projects the cached tasks into the board view. Dangling
// assignee references found while rendering are silently dropped from the
// output and reported to the reconciler for a deduplicated corrective
// write.
func (s *Session) RenderBoard(ctx context.Context, search string) view.Node {
	node, dangling := view.RenderBoard(s.tasks.Items(), s.contacts.Get, search)
	if s.reconciler != nil {
		for _, d := range dangling {
			s.reconciler.Report(ctx, s.user.ID, d.TaskID, d.ContactIDs)
		}
	}
	return node
}

// RenderContacts projects the cached contacts into the grouped list view.
func (s *Session) RenderContacts() view.Node {
	email := s.user.Email
	if s.user.Guest() {
		email = ""
	}
	return view.RenderContactList(s.contacts.Items(), email)
}

// RenderAssignPicker projects the assignment selector and its bounded
// preview strip for the task form.
func (s *Session) RenderAssignPicker() view.Node {
	contacts := s.contacts.Items()
	picker := view.Node{Tag: "div", Class: "assign-picker"}
	picker.Children = append(picker.Children, view.RenderSelector(contacts, s.selection.Has))

	var chosen []domain.Contact
	for _, id := range s.selection.IDs() {
		if c, ok := s.contacts.Get(id); ok {
			chosen = append(chosen, c)
		}
	}
	picker.Children = append(picker.Children, view.RenderSelectionPreview(chosen))
	return picker
}
