package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// These are core error primitives used at every trust boundary. Unit tests
// ensure invariants like "wrapped domain errors preserve original code" and
// "errors.Is matches by code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "request not found"}
		s.Equal("request not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeConflict}
		s.Equal("conflict", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("connection refused")
		err := &Error{Code: CodeInternal, Message: "store error", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("works with errors.Unwrap", func() {
		inner := errors.New("root cause")
		err := &Error{Code: CodeInternal, Err: inner}
		s.Equal(inner, errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeNotFound, Message: "request not found"}
		err2 := &Error{Code: CodeNotFound, Message: "document not found"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeNotFound}
		err2 := &Error{Code: CodeValidation}
		s.False(err1.Is(err2))
	})

	s.Run("does not match non-domain errors", func() {
		err1 := &Error{Code: CodeNotFound}
		s.False(err1.Is(errors.New("not found")))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	s.Run("preserves code of wrapped domain error", func() {
		inner := New(CodeConfirmationTimeout, "confirmation budget exhausted")
		outer := Wrap(inner, CodeInternal, "ledger submit failed")
		s.True(HasCode(outer, CodeConfirmationTimeout))
	})

	s.Run("applies given code to plain errors", func() {
		outer := Wrap(errors.New("boom"), CodeInternal, "store unreachable")
		s.True(HasCode(outer, CodeInternal))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("finds code through wrapping layers", func() {
		err := Wrap(New(CodeNotFound, "missing"), CodeInternal, "lookup failed")
		s.True(HasCode(err, CodeNotFound))
		s.False(HasCode(err, CodeConflict))
	})

	s.Run("false for nil and plain errors", func() {
		s.False(HasCode(nil, CodeNotFound))
		s.False(HasCode(errors.New("plain"), CodeNotFound))
	})
}
