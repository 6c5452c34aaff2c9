package layout

import (
	"strings"
	"testing"
)

func seatCfg(floor, x, y int, seatNumber string) SpaceConfig {
	return SpaceConfig{
		FloorNumber: floor,
		Position:    &Position{X: x, Y: y},
		SeatNumber:  seatNumber,
	}
}

func testBounds() *Bounds {
	return &Bounds{
		NumFloors: 1,
		Floors:    []FloorConfig{{FloorNumber: 1, NumRows: 10, SeatsLeft: 2, SeatsRight: 2}},
	}
}

func wantValidation(t *testing.T, err error, message string) *ValidationError {
	t.Helper()
	ve, ok := AsValidation(err)
	if !ok {
		t.Fatalf("want ValidationError %q, got %v", message, err)
	}
	if ve.Message != message {
		t.Fatalf("message = %q, want %q", ve.Message, message)
	}
	return ve
}

func TestValidateMissingRequiredFields(t *testing.T) {
	err := ValidateBatch([]SpaceConfig{{FloorNumber: 1}}, nil)
	ve := wantValidation(t, err, "missing required fields")
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "position" {
		t.Fatalf("unexpected fields %+v", ve.Fields)
	}
}

func TestValidateSeatNumberRequired(t *testing.T) {
	// Default space type is SEAT, so a bare position needs a seat number.
	err := ValidateBatch([]SpaceConfig{
		{FloorNumber: 1, Position: &Position{X: 0, Y: 1}},
	}, nil)
	wantValidation(t, err, "seat number required for SEAT space types")

	// Explicit non-seat types do not.
	err = ValidateBatch([]SpaceConfig{
		{FloorNumber: 1, Position: &Position{X: 0, Y: 1}, SpaceType: SpaceHallway},
	}, nil)
	if err != nil {
		t.Fatalf("hallway without seat number rejected: %v", err)
	}
}

func TestValidateDuplicatePositions(t *testing.T) {
	// Same (floor, position) with otherwise different fields still fails.
	err := ValidateBatch([]SpaceConfig{
		seatCfg(1, 0, 1, "1"),
		{FloorNumber: 1, Position: &Position{X: 0, Y: 1}, SpaceType: SpaceBathroom},
	}, nil)
	ve := wantValidation(t, err, "duplicate positions found in payload")
	if ve.Fields[0].Index != 1 {
		t.Fatalf("duplicate reported at index %d, want 1", ve.Fields[0].Index)
	}
}

func TestValidateDuplicateSeatNumbers(t *testing.T) {
	err := ValidateBatch([]SpaceConfig{
		seatCfg(1, 0, 1, "7"),
		seatCfg(1, 1, 1, "7"),
	}, nil)
	wantValidation(t, err, "duplicate seat numbers found in payload")

	// Non-seat entries never count toward seat number uniqueness.
	err = ValidateBatch([]SpaceConfig{
		seatCfg(1, 0, 1, "7"),
		{FloorNumber: 1, Position: &Position{X: 1, Y: 1}, SpaceType: SpaceStairs},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		cfg    SpaceConfig
		detail string
	}{
		{"negative column", seatCfg(1, -1, 1, "1"), "column -1 out of range [0,4]"},
		{"column past foldable slot", seatCfg(1, 5, 1, "1"), "column 5 out of range [0,4]"},
		{"row beyond floor", seatCfg(1, 0, 11, "1"), "row 11 out of range [1,10]"},
		{"floor beyond layout", seatCfg(2, 0, 1, "1"), "floor 2 out of range [1,1]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBatch([]SpaceConfig{tc.cfg}, testBounds())
			ve := wantValidation(t, err, "space position out of bounds")
			if !strings.Contains(ve.Error(), tc.detail) {
				t.Fatalf("error %q does not mention %q", ve.Error(), tc.detail)
			}
		})
	}
}

func TestValidateAisleAndEdgeSeatsAllowed(t *testing.T) {
	// Column seatsLeft (the aisle) and column rowWidth are both legal:
	// foldable and last-row seats occupy them on real buses.
	err := ValidateBatch([]SpaceConfig{
		seatCfg(1, 2, 5, "90"),
		seatCfg(1, 4, 10, "91"),
	}, testBounds())
	if err != nil {
		t.Fatalf("aisle/edge seats rejected: %v", err)
	}
}

func TestValidateCheckOrder(t *testing.T) {
	// A batch violating several rules reports the earliest rule:
	// missing fields win over duplicates and bounds.
	err := ValidateBatch([]SpaceConfig{
		{FloorNumber: 99, Position: &Position{X: 0, Y: 1}, SeatNumber: "1"},
		{FloorNumber: 99, Position: &Position{X: 0, Y: 1}, SeatNumber: "1"},
		{},
	}, testBounds())
	wantValidation(t, err, "missing required fields")
}

func TestValidateUnknownSpaceType(t *testing.T) {
	err := ValidateBatch([]SpaceConfig{
		{FloorNumber: 1, Position: &Position{X: 0, Y: 1}, SpaceType: "RECLINER"},
	}, nil)
	wantValidation(t, err, "missing required fields")
}
