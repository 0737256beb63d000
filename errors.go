package wikietym

import (
	"errors"
	"fmt"
)

// ErrMalformedDump is returned when the dump is not well-formed XML.
var ErrMalformedDump = errors.New("malformed dump")

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedDump, err)
}

// An ArticleError reports a failure while extracting one article. The
// run carries on without the article.
type ArticleError struct {
	Title string
	Cause error
}

func (e *ArticleError) Error() string {
	return fmt.Sprintf("article %q: %v", e.Title, e.Cause)
}

func (e *ArticleError) Unwrap() error {
	return e.Cause
}
