package layout

import "strconv"

// PositionKey derives the canonical identity key for a cell: "floor:x:y".
// The fixed ":" separators keep keys unambiguous for any integer inputs,
// so (1,2,3) can never collide with (12,3). All position-based lookups in
// validation, reconciliation and template sync go through this key.
func PositionKey(floorNumber, x, y int) string {
	return strconv.Itoa(floorNumber) + ":" + strconv.Itoa(x) + ":" + strconv.Itoa(y)
}
