package layout

import "fmt"

// Bounds is the optional layout context a batch is checked against.
type Bounds struct {
	NumFloors int
	Floors    []FloorConfig
}

// Floor returns the configuration for a floor number, if present.
func (b *Bounds) Floor(n int) (FloorConfig, bool) {
	for _, f := range b.Floors {
		if f.FloorNumber == n {
			return f, true
		}
	}
	return FloorConfig{}, false
}

// ValidateBatch checks a batch of incoming space configurations against
// the structural constraints, in a fixed order, eagerly over the full
// batch. Validation is all-or-nothing: the first failing rule rejects the
// whole batch before anything is persisted. bounds may be nil when no
// layout context is available (pure payload validation).
func ValidateBatch(batch []SpaceConfig, bounds *Bounds) error {
	// 1. Required fields.
	var missing []FieldError
	for i, c := range batch {
		if c.Position == nil {
			missing = append(missing, FieldError{Index: i, Field: "position", Detail: "required"})
		}
		if c.FloorNumber == 0 {
			missing = append(missing, FieldError{Index: i, Field: "floor_number", Detail: "required"})
		}
		if c.SpaceType != "" && !ValidSpaceType(c.SpaceType) {
			missing = append(missing, FieldError{Index: i, Field: "space_type",
				Detail: fmt.Sprintf("unknown space type %q", c.SpaceType)})
		}
	}
	if len(missing) > 0 {
		return NewValidationError("missing required fields", missing...)
	}

	// 2. Seat number required for seats.
	var noSeatNo []FieldError
	for i, c := range batch {
		if c.EffectiveType() == SpaceSeat && c.SeatNumber == "" {
			noSeatNo = append(noSeatNo, FieldError{Index: i, Field: "seat_number", Detail: "required"})
		}
	}
	if len(noSeatNo) > 0 {
		return NewValidationError("seat number required for SEAT space types", noSeatNo...)
	}

	// 3. Duplicate positions within the payload.
	seenPos := make(map[string]int, len(batch))
	var dupPos []FieldError
	for i, c := range batch {
		key := c.Key()
		if first, ok := seenPos[key]; ok {
			dupPos = append(dupPos, FieldError{Index: i, Field: "position",
				Detail: fmt.Sprintf("position %s already used by entry %d", key, first)})
			continue
		}
		seenPos[key] = i
	}
	if len(dupPos) > 0 {
		return NewValidationError("duplicate positions found in payload", dupPos...)
	}

	// 4. Duplicate seat numbers among seat entries.
	seenSeat := make(map[string]int, len(batch))
	var dupSeat []FieldError
	for i, c := range batch {
		if c.EffectiveType() != SpaceSeat {
			continue
		}
		if first, ok := seenSeat[c.SeatNumber]; ok {
			dupSeat = append(dupSeat, FieldError{Index: i, Field: "seat_number",
				Detail: fmt.Sprintf("seat number %q already used by entry %d", c.SeatNumber, first)})
			continue
		}
		seenSeat[c.SeatNumber] = i
	}
	if len(dupSeat) > 0 {
		return NewValidationError("duplicate seat numbers found in payload", dupSeat...)
	}

	// 5. Bounds, when a layout context is supplied.
	if bounds == nil {
		return nil
	}
	var oob []FieldError
	for i, c := range batch {
		if c.FloorNumber < 1 || c.FloorNumber > bounds.NumFloors {
			oob = append(oob, FieldError{Index: i, Field: "floor_number",
				Detail: fmt.Sprintf("floor %d out of range [1,%d]", c.FloorNumber, bounds.NumFloors)})
			continue
		}
		fc, ok := bounds.Floor(c.FloorNumber)
		if !ok {
			oob = append(oob, FieldError{Index: i, Field: "floor_number",
				Detail: fmt.Sprintf("floor configuration not found for floor %d", c.FloorNumber)})
			continue
		}
		if c.Position.Y < 1 || c.Position.Y > fc.NumRows {
			oob = append(oob, FieldError{Index: i, Field: "position.y",
				Detail: fmt.Sprintf("row %d out of range [1,%d]", c.Position.Y, fc.NumRows)})
		}
		// The upper bound is rowWidth inclusive: the aisle column and the
		// slot past the nominal right edge are allowed so foldable,
		// last-row and aisle seats can be placed.
		if c.Position.X < 0 || c.Position.X > fc.RowWidth() {
			oob = append(oob, FieldError{Index: i, Field: "position.x",
				Detail: fmt.Sprintf("column %d out of range [0,%d]", c.Position.X, fc.RowWidth())})
		}
	}
	if len(oob) > 0 {
		return NewValidationError("space position out of bounds", oob...)
	}
	return nil
}
