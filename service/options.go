package service

type saveOptions struct {
	force bool
	flush bool
}

type SaveOption func(*saveOptions)

// Force is accepted for compatibility; saving behaves the same with or without it.
func Force() SaveOption {
	return func(o *saveOptions) {
		o.force = true
	}
}

// WithoutFlush leaves the change pending in the unit of work.
func WithoutFlush() SaveOption {
	return func(o *saveOptions) {
		o.flush = false
	}
}

func newSaveOptions(opts []SaveOption) saveOptions {
	o := saveOptions{flush: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type commentOptions struct {
	system  bool
	persist bool
}

type CommentOption func(*commentOptions)

// AsSystem marks the comment as written by the system rather than a person.
func AsSystem() CommentOption {
	return func(o *commentOptions) {
		o.system = true
	}
}

// WithoutPersist attaches the comment without saving either side.
func WithoutPersist() CommentOption {
	return func(o *commentOptions) {
		o.persist = false
	}
}

func newCommentOptions(opts []CommentOption) commentOptions {
	o := commentOptions{persist: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
