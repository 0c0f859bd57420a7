package bytecode

// Sink receives instructions in program order.
type Sink interface {
	Emit(in Instr)
}

// Buffer is an in-memory Sink.
type Buffer struct {
	code []Instr
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer { return &Buffer{} }

func (b *Buffer) Emit(in Instr) { b.code = append(b.code, in) }

// Len is the number of buffered instructions.
func (b *Buffer) Len() int { return len(b.code) }

// Instrs returns the buffered instructions; callers must not modify them.
func (b *Buffer) Instrs() []Instr { return b.code }

// Reset drops every buffered instruction.
func (b *Buffer) Reset() { b.code = b.code[:0] }

// FlushTo appends the buffered instructions to s in order and resets b.
func (b *Buffer) FlushTo(s Sink) {
	for _, in := range b.code {
		s.Emit(in)
	}
	b.Reset()
}

// CountingSink forwards to Next and counts what passed through.
type CountingSink struct {
	Next  Sink
	Count int
}

func (c *CountingSink) Emit(in Instr) {
	c.Count++
	if c.Next != nil {
		c.Next.Emit(in)
	}
}
