package layout

import (
	"fmt"
	"strconv"
)

// DefaultSeatType is assigned to generated seats; operators refine seat
// classes afterwards through the batch editor.
const DefaultSeatType = "STANDARD"

// GeneratedSpace is one seat record emitted by Generate. The generator
// only ever emits SEAT cells; aisles and other special cells are added
// later through reconciliation.
type GeneratedSpace struct {
	FloorNumber int
	Position    Position
	SpaceType   SpaceType
	SeatNumber  string
	SeatType    string
	Meta        map[string]any
}

// Generate procedurally enumerates every seat of a layout from its floor
// configurations. Floors are processed in ascending floor number 1..numFloors;
// within a floor, rows ascend and left-block seats precede right-block seats.
// Seat numbers form one contiguous 1..N sequence across the whole layout.
//
// The output is deterministic: identical inputs produce identical sequences.
// A floor without a matching FloorConfig fails the whole generation; callers
// running inside a creation transaction roll back the parent entity.
func Generate(numFloors int, floors []FloorConfig) ([]GeneratedSpace, error) {
	byFloor := make(map[int]FloorConfig, len(floors))
	for _, f := range floors {
		byFloor[f.FloorNumber] = f
	}

	var out []GeneratedSpace
	seatNo := 0
	for floorNum := 1; floorNum <= numFloors; floorNum++ {
		fc, ok := byFloor[floorNum]
		if !ok {
			return nil, NewValidationError(
				fmt.Sprintf("floor configuration not found for floor %d", floorNum))
		}
		for row := 1; row <= fc.NumRows; row++ {
			// Left block: columns 0..seatsLeft-1.
			for col := 0; col < fc.SeatsLeft; col++ {
				seatNo++
				out = append(out, newSeat(floorNum, row, col, seatNo, fc))
			}
			// Right block: columns seatsLeft+1..seatsLeft+seatsRight.
			// Column seatsLeft is the aisle and is never emitted here.
			for col := fc.SeatsLeft + 1; col <= fc.SeatsLeft+fc.SeatsRight; col++ {
				seatNo++
				out = append(out, newSeat(floorNum, row, col, seatNo, fc))
			}
		}
	}
	if len(out) == 0 {
		return nil, NewValidationError("floor configuration produced no seats")
	}
	return out, nil
}

func newSeat(floorNum, row, col, seatNo int, fc FloorConfig) GeneratedSpace {
	return GeneratedSpace{
		FloorNumber: floorNum,
		Position:    Position{X: col, Y: row},
		SpaceType:   SpaceSeat,
		SeatNumber:  strconv.Itoa(seatNo),
		SeatType:    DefaultSeatType,
		Meta:        SeatMeta(row, col, fc),
	}
}

// TotalSeats is the seat count Generate would emit for the given floors:
// sum of numRows*(seatsLeft+seatsRight) over the first numFloors floors.
func TotalSeats(numFloors int, floors []FloorConfig) int {
	total := 0
	for _, f := range floors {
		if f.FloorNumber >= 1 && f.FloorNumber <= numFloors {
			total += f.NumRows * f.RowWidth()
		}
	}
	return total
}
