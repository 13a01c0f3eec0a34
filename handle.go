package lever

import "strconv"

// Handle identifies one lever for the lifetime of a System. Handles are
// assigned sequentially by Initialize and never reused.
type Handle uint32

func (h Handle) String() string {
	return "lever#" + strconv.FormatUint(uint64(h), 10)
}
