package machine

// Access is the direction of a memory access.
type Access int

//go:generate go tool stringer -linecomment -type=Access
const (
	ACCESS_READ  = Access(0) // read
	ACCESS_WRITE = Access(1) // write
)

// Resolve returns the value of an operand. An immediate operand is its raw
// value; an indexed operand is the memory cell at the raw value.
func Resolve(raw Cell, indexed bool, mem *Memory) (value Cell, err error) {
	if !indexed {
		value = raw
		return
	}

	value, err = mem.Read(int(raw))
	if err != nil {
		err = &ErrAccess{Access: ACCESS_READ, Address: raw}
		return
	}

	return
}
