package console

// Page identifies a console page.
type Page int

const (
	PageLogin Page = iota
	PageList
	PageForm
)

// RequiresAuth reports whether a page needs an authenticated session.
func (p Page) RequiresAuth() bool {
	return p != PageLogin
}

// Resolve applies the route guard: a page that requires authentication is
// replaced by the login page when the session is not authenticated. It is a
// pure function of its inputs.
func Resolve(requested Page, authenticated bool) Page {
	if requested.RequiresAuth() && !authenticated {
		return PageLogin
	}
	return requested
}
