package bind_group_provider

// BufferWrite is one queued write of Data into the buffer at Binding on Provider, starting at
// Offset bytes.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
