package service

import (
	"github.com/gourmet-kitchen/ordersys/internal/model"
	"github.com/gourmet-kitchen/ordersys/internal/quickentry"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
)

// QuickEntryLine is one typed ticket line resolved against the menu.
type QuickEntryLine struct {
	RawText             string                 `json:"raw_text"`
	Quantity            int                    `json:"quantity"`
	SpecialInstructions string                 `json:"special_instructions"`
	Status              quickentry.MatchStatus `json:"status"`
	MenuItem            *model.MenuItemRecord  `json:"menu_item,omitempty"`
	Candidates          []model.MenuItemRecord `json:"candidates,omitempty"`
}

// QuickEntry is the proposal built from a typed ticket. Nothing is ordered
// until the client confirms the matched lines through CreateOrder.
type QuickEntry struct {
	Lines    []QuickEntryLine `json:"lines"`
	Warnings []string         `json:"warnings"`
}

// QuickEntry parses text such as "2x burger - no onions" line by line and
// matches each line against the available menu items.
func (r *Restaurant) QuickEntry(text string) (QuickEntry, error) {
	ticket, err := quickentry.ParseTicket(text)
	if err != nil {
		return QuickEntry{}, &validate.Error{Field: "text", Reason: err.Error()}
	}

	menu := r.Menu(MenuFilter{AvailableOnly: true})
	byID := make(map[string]model.MenuItemRecord, len(menu))
	items := make([]quickentry.Item, 0, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
		items = append(items, quickentry.Item{ID: m.ID, Name: m.Name, Category: m.Category})
	}
	matcher := quickentry.New(items)

	out := QuickEntry{
		Lines:    make([]QuickEntryLine, 0, len(ticket.Lines)),
		Warnings: append([]string{}, ticket.Warnings...),
	}
	for _, pl := range ticket.Lines {
		res := matcher.Match(pl.Description)
		line := QuickEntryLine{
			RawText:             pl.RawText,
			Quantity:            pl.Quantity,
			SpecialInstructions: pl.Instructions,
			Status:              res.Status,
		}
		switch res.Status {
		case quickentry.Matched:
			rec := byID[res.Item.ID]
			line.MenuItem = &rec
		case quickentry.Ambiguous:
			for _, c := range res.Candidates {
				line.Candidates = append(line.Candidates, byID[c.ID])
			}
		}
		out.Lines = append(out.Lines, line)
	}

	r.log.WithField("lines", len(out.Lines)).Debug("quick entry parsed")
	return out, nil
}
