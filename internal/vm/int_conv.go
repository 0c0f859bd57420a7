package vm

func asUint64(v int64) uint64 {
	return uint64(v) //nolint:gosec // G115: intentional bit-pattern reinterpretation for unsigned ops.
}

func asInt64(v uint64) int64 {
	return int64(v) //nolint:gosec // G115: intentional bit-pattern reinterpretation for fixed-width ints.
}

func asUint32(v int32) uint32 {
	return uint32(v) //nolint:gosec // G115: intentional bit-pattern reinterpretation for ushr.
}

// wrap32 truncates v to the Int32 slot the VM keeps it in.
func wrap32(v int64) int64 {
	return int64(int32(v)) //nolint:gosec // G115: two's-complement wrap-around is the VM semantics.
}
