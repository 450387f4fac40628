package errorhandler

import (
	"errors"
)

var ErrInvalidHandlerType = errors.New("handler type must have a name and a constructor")

// Matcher reports whether an error belongs to a registered error type.
type Matcher func(err error) bool

// MatchType matches errors whose chain contains a T. Wrapping an error
// counts as deriving from it.
func MatchType[T error]() Matcher {
	return func(err error) bool {
		var target T
		return errors.As(err, &target)
	}
}

// MatchError matches errors whose chain contains target.
func MatchError(target error) Matcher {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}

// HandlerType names a kind of ExceptionHandler and knows how to build one.
type HandlerType struct {
	Name string
	New  func(env Env) ExceptionHandler
}

func (h HandlerType) valid() bool {
	return h.Name != "" && h.New != nil
}

type binding struct {
	match   Matcher
	handler HandlerType
}

// Classifier maps errors to handler types. Registrations are made at
// startup; after that the table is only read.
type Classifier struct {
	bindings []binding
	fallback HandlerType
}

func NewClassifier(fallback HandlerType) *Classifier {
	if !fallback.valid() {
		fallback = DefaultHandlerType
	}
	return &Classifier{fallback: fallback}
}

// Register appends a binding. Later registrations take precedence over
// earlier ones that also match.
func (c *Classifier) Register(match Matcher, handler HandlerType) error {
	if match == nil {
		return errors.New("matcher must not be nil")
	}
	if !handler.valid() {
		return ErrInvalidHandlerType
	}
	c.bindings = append(c.bindings, binding{match: match, handler: handler})
	return nil
}

// Classify scans every binding in registration order and returns the last
// one that matched, or the fallback when none did.
func (c *Classifier) Classify(err error) HandlerType {
	selected := c.fallback
	for _, b := range c.bindings {
		if b.match(err) {
			selected = b.handler
		}
	}
	return selected
}
