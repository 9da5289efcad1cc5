package kernel

// FirstFuture resolves when either of two futures resolves. The loser is
// cancelled so it leaves no interrupt routing or timer entry behind.
type FirstFuture struct {
	a, b   Future
	winner int
}

// First composes two futures first-to-complete. Polling order is a then b,
// so simultaneous readiness resolves to a.
func First(a, b Future) *FirstFuture {
	return &FirstFuture{a: a, b: b, winner: -1}
}

// Winner reports which future resolved: 0 for the first, 1 for the second,
// -1 while pending.
func (f *FirstFuture) Winner() int { return f.winner }

func (f *FirstFuture) Poll(w Waker) (Poll, error) {
	if f.winner >= 0 {
		return Ready, nil
	}
	res, err := f.a.Poll(w)
	if err != nil {
		return Pending, err
	}
	if res == Ready {
		f.winner = 0
		cancelIfAble(f.b)
		return Ready, nil
	}
	res, err = f.b.Poll(w)
	if err != nil {
		return Pending, err
	}
	if res == Ready {
		f.winner = 1
		cancelIfAble(f.a)
		return Ready, nil
	}
	return Pending, nil
}

// Cancel aborts both sides while still pending.
func (f *FirstFuture) Cancel() {
	if f.winner >= 0 {
		return
	}
	cancelIfAble(f.a)
	cancelIfAble(f.b)
}

func cancelIfAble(f Future) {
	if c, ok := f.(Canceler); ok {
		c.Cancel()
	}
}
