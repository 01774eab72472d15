package blockloc

// Future is the pending result of Stream.ReadAsync.
type Future struct {
	done chan struct{}
	n    int
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(n int, err error) {
	f.n, f.err = n, err
	close(f.done)
}

// Done is closed when the read has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the read has finished and returns its result.
func (f *Future) Wait() (int, error) {
	<-f.done
	return f.n, f.err
}
