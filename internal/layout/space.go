package layout

// SpaceType discriminates what a grid cell is. Only SEAT cells carry
// seat-specific fields (seat number, seat type, reclinement angle).
type SpaceType string

const (
	SpaceSeat     SpaceType = "SEAT"
	SpaceHallway  SpaceType = "HALLWAY"
	SpaceBathroom SpaceType = "BATHROOM"
	SpaceEmpty    SpaceType = "EMPTY"
	SpaceStairs   SpaceType = "STAIRS"
)

// ValidSpaceType reports whether t is one of the known space types.
func ValidSpaceType(t SpaceType) bool {
	switch t {
	case SpaceSeat, SpaceHallway, SpaceBathroom, SpaceEmpty, SpaceStairs:
		return true
	}
	return false
}

// Position locates a cell on a floor's grid: X is the 0-based column,
// Y the 1-based row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// FloorConfig describes one floor's seat grid: NumRows rows, each with
// SeatsLeft seats left of the center aisle and SeatsRight to its right.
// The aisle itself occupies column index SeatsLeft.
type FloorConfig struct {
	FloorNumber int `json:"floor_number"`
	NumRows     int `json:"num_rows"`
	SeatsLeft   int `json:"seats_left"`
	SeatsRight  int `json:"seats_right"`
}

// RowWidth is the number of seats per row (aisle excluded).
func (f FloorConfig) RowWidth() int { return f.SeatsLeft + f.SeatsRight }

// SpaceConfig is one entry of an incoming seat-editor batch. SpaceType
// defaults to SEAT when empty; Active defaults to true when nil.
// Seat-only fields are ignored for non-seat types.
type SpaceConfig struct {
	FloorNumber      int       `json:"floor_number"`
	Position         *Position `json:"position"`
	SpaceType        SpaceType `json:"space_type"`
	SeatNumber       string    `json:"seat_number"`
	SeatType         string    `json:"seat_type"`
	ReclinementAngle int       `json:"reclinement_angle"`
	Amenities        []string  `json:"amenities"`
	Active           *bool     `json:"active"`
}

// EffectiveType resolves the SEAT default.
func (c SpaceConfig) EffectiveType() SpaceType {
	if c.SpaceType == "" {
		return SpaceSeat
	}
	return c.SpaceType
}

// EffectiveActive resolves the active default (true).
func (c SpaceConfig) EffectiveActive() bool {
	if c.Active == nil {
		return true
	}
	return *c.Active
}

// Key returns the position key of this entry. Position must be non-nil;
// ValidateBatch rejects entries without one before any caller gets here.
func (c SpaceConfig) Key() string {
	return PositionKey(c.FloorNumber, c.Position.X, c.Position.Y)
}

// Meta key names shared by the generator and the reconciler.
const (
	MetaRowIndex  = "rowIndex"
	MetaColIndex  = "colIndex"
	MetaIsWindow  = "isWindow"
	MetaIsLegroom = "isLegroom"
)

// SeatMeta computes the derived per-seat properties for a cell. A seat is
// a window seat when it sits on column 0 or on the floor's last column
// (SeatsLeft+SeatsRight, the slot past the aisle-shifted right block).
// Legroom is granted to the first row only.
func SeatMeta(rowNumber, colIndex int, floor FloorConfig) map[string]any {
	return map[string]any{
		MetaRowIndex:  rowNumber - 1,
		MetaColIndex:  colIndex,
		MetaIsWindow:  colIndex == 0 || colIndex == floor.RowWidth(),
		MetaIsLegroom: rowNumber == 1,
	}
}

// BaseMeta computes the derived properties for non-seat cells; the
// seat-only keys are absent rather than false.
func BaseMeta(rowNumber, colIndex int) map[string]any {
	return map[string]any{
		MetaRowIndex: rowNumber - 1,
		MetaColIndex: colIndex,
	}
}
