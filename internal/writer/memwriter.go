package writer

// MemWriter captures configuration bytes in memory. Used in tests.
type MemWriter struct {
	Buf []byte
}

// WriteConfig stores a copy of the provided buffer.
func (w *MemWriter) WriteConfig(buf []byte) error {
	w.Buf = append(w.Buf[:0], buf...)
	return nil
}
