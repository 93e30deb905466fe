package outline

// Watch registers fn to be called whenever the visible sequence changes.
// Observers are invoked synchronously, on the caller's goroutine, after the
// mutation has been applied.
func (l *List) Watch(fn func()) {
	l.observers = append(l.observers, fn)
}

// AutoNotify reports whether structural mutations currently signal observers.
func (l *List) AutoNotify() bool {
	return l.autoNotify
}

// SetAutoNotify controls whether mutating calls signal observers. The default
// is on. While off, mutations are silent until Notify is called. Turning it
// back on fires one immediate signal so observers can catch up on whatever
// they missed.
func (l *List) SetAutoNotify(on bool) {
	if on && !l.autoNotify {
		l.autoNotify = true
		l.emit()
		return
	}
	l.autoNotify = on
}

// Notify signals observers unconditionally and re-enables auto-notification.
func (l *List) Notify() {
	l.emit()
	l.autoNotify = true
}

// batch runs fn with auto-notification suppressed. On exit, however fn
// returns, the prior mode is restored, and if that mode was enabled a single
// signal is fired in place of the per-step ones fn suppressed.
func (l *List) batch(fn func()) {
	prior := l.autoNotify
	l.autoNotify = false
	defer func() {
		l.autoNotify = prior
		if prior {
			l.emit()
		}
	}()
	fn()
}

func (l *List) changed() {
	if l.autoNotify {
		l.emit()
	}
}

func (l *List) emit() {
	for _, fn := range l.observers {
		fn()
	}
}
