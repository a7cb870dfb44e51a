package journal

// Subscriber handles writer lifecycle event subscriptions.
type Subscriber struct {
	done            chan struct{}
	startedHandler  func(WriterStarted)
	flushHandler    func(FlushCompleted)
	errorHandler    func(WriterError)
	shutdownHandler func(WriterShutdown)
}

// OnWriterStarted sets the handler for WriterStarted events
func OnWriterStarted(fn func(WriterStarted)) func(*Subscriber) {
	return func(s *Subscriber) { s.startedHandler = fn }
}

// OnFlushCompleted sets the handler for FlushCompleted events
func OnFlushCompleted(fn func(FlushCompleted)) func(*Subscriber) {
	return func(s *Subscriber) { s.flushHandler = fn }
}

// OnWriterError sets the handler for WriterError events
func OnWriterError(fn func(WriterError)) func(*Subscriber) {
	return func(s *Subscriber) { s.errorHandler = fn }
}

// OnWriterShutdown sets the handler for WriterShutdown events
func OnWriterShutdown(fn func(WriterShutdown)) func(*Subscriber) {
	return func(s *Subscriber) { s.shutdownHandler = fn }
}

// NewSubscriber creates a Subscriber with the given options and starts the
// dispatch loop. Returns a closer function that waits until every event has
// been handled; use defer closer() to guarantee cleanup before exit.
func NewSubscriber(events <-chan Event, opts ...func(*Subscriber)) func() {
	s := &Subscriber{
		done:            make(chan struct{}),
		startedHandler:  func(WriterStarted) {},  // nop by default
		flushHandler:    func(FlushCompleted) {}, // nop by default
		errorHandler:    func(WriterError) {},    // nop by default
		shutdownHandler: func(WriterShutdown) {}, // nop by default
	}

	for _, opt := range opts {
		opt(s)
	}

	// Start the dispatch loop immediately
	go func() {
		defer close(s.done)
		for ev := range events {
			switch e := ev.(type) {
			case WriterStarted:
				s.startedHandler(e)
			case FlushCompleted:
				s.flushHandler(e)
			case WriterError:
				s.errorHandler(e)
			case WriterShutdown:
				s.shutdownHandler(e)
			}
		}
	}()

	return func() {
		<-s.done
	}
}
