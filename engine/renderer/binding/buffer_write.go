package binding

// BufferWrite describes a single GPU buffer write operation targeting a specific
// binding on a Provider at a given byte offset.
type BufferWrite struct {
	Provider Provider
	Binding  int
	Offset   uint64
	Data     []byte
}
