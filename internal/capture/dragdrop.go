package capture

import (
	"fmt"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
)

// dragIntoText places chips into drop zones. In group mode the chips are
// whole groups and never leave the pool; in item mode each item chip is
// hidden while placed unless it is reusable.
type dragIntoText struct {
	base
	chips      []models.Chip
	placements map[int]models.Chip
}

func newDragIntoText(b base, shuffle Shuffler) *dragIntoText {
	q := b.question
	var chips []models.Chip
	if q.GroupMode {
		for _, g := range q.ZoneGroups() {
			chips = append(chips, models.Chip{Kind: models.ChipGroup, Group: g})
		}
	} else {
		for i, it := range q.DraggableItems {
			chips = append(chips, models.Chip{Kind: models.ChipItem, Index: i, Group: it.Group})
		}
	}
	shuffle(len(chips), func(i, j int) { chips[i], chips[j] = chips[j], chips[i] })

	return &dragIntoText{base: b, chips: chips, placements: map[int]models.Chip{}}
}

func (w *dragIntoText) Apply(a Action) error {
	if err := w.guard(a, ActionDrop, ActionClearZone); err != nil {
		return err
	}
	if a.Zone < 0 || a.Zone >= len(w.question.DropZones) {
		return fmt.Errorf("%w: zone %d out of range", qerrors.ErrInvalidAction, a.Zone)
	}
	if a.Kind == ActionClearZone {
		delete(w.placements, a.Zone)
		return nil
	}
	if a.Chip == nil {
		return fmt.Errorf("%w: drop needs a chip", qerrors.ErrInvalidAction)
	}

	chip, err := w.resolveChip(*a.Chip)
	if err != nil {
		return err
	}
	if w.hidden(chip) {
		if prev, ok := w.placements[a.Zone]; ok && prev == chip {
			return nil
		}
		return fmt.Errorf("%w: item %d is already placed", qerrors.ErrInvalidAction, chip.Index)
	}
	// Replacing the occupant puts a hidden item chip back in the pool.
	w.placements[a.Zone] = chip
	return nil
}

// resolveChip checks the chip against the widget's mode and fills in its group.
func (w *dragIntoText) resolveChip(c models.Chip) (models.Chip, error) {
	q := w.question
	switch {
	case q.GroupMode && c.Kind == models.ChipGroup:
		for _, chip := range w.chips {
			if chip.Group == c.Group {
				return chip, nil
			}
		}
		return models.Chip{}, fmt.Errorf("%w: unknown group %q", qerrors.ErrInvalidAction, c.Group)
	case !q.GroupMode && c.Kind == models.ChipItem:
		if c.Index < 0 || c.Index >= len(q.DraggableItems) {
			return models.Chip{}, fmt.Errorf("%w: item %d out of range", qerrors.ErrInvalidAction, c.Index)
		}
		return models.Chip{Kind: models.ChipItem, Index: c.Index, Group: q.DraggableItems[c.Index].Group}, nil
	}
	return models.Chip{}, fmt.Errorf("%w: %s chip in the wrong mode", qerrors.ErrInvalidAction, c.Kind)
}

// hidden reports whether an item chip currently sits in some zone and may
// not be used again.
func (w *dragIntoText) hidden(c models.Chip) bool {
	if c.Kind != models.ChipItem || w.question.DraggableItems[c.Index].Reusable {
		return false
	}
	for _, p := range w.placements {
		if p == c {
			return true
		}
	}
	return false
}

func (w *dragIntoText) CurrentAnswer() models.CapturedAnswer {
	p := make(map[int]models.Chip, len(w.placements))
	for k, v := range w.placements {
		p[k] = v
	}
	return models.CapturedAnswer{Type: models.DragIntoText, Placements: p}
}

func (w *dragIntoText) chipLabel(c models.Chip) string {
	if c.Kind == models.ChipGroup {
		return w.question.GroupLabel(c.Group)
	}
	return w.question.DraggableItems[c.Index].Label
}

func (w *dragIntoText) View() View {
	v := w.view()
	for _, c := range w.chips {
		v.Chips = append(v.Chips, ChipView{Chip: c, Label: w.chipLabel(c), Hidden: w.hidden(c)})
	}
	for i, z := range w.question.DropZones {
		zv := ZoneView{Position: i, ID: z.ID}
		if c, ok := w.placements[i]; ok {
			zv.Filled = true
			zv.Label = w.chipLabel(c)
		}
		v.Zones = append(v.Zones, zv)
	}
	return v
}
