package models

// Note is a user's text note. Title and Content are optional; Username is the
// owner and is set by the server.
type Note struct {
	ID       string  `json:"id"`
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Username string  `json:"username"`
}

// NoteTitle is the list projection of a note.
type NoteTitle struct {
	ID    string  `json:"id"`
	Title *string `json:"title"`
}

// NoteBody is the single-note projection, without the owner.
type NoteBody struct {
	ID      string  `json:"id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (n Note) TitleView() NoteTitle {
	return NoteTitle{ID: n.ID, Title: n.Title}
}

func (n Note) BodyView() NoteBody {
	return NoteBody{ID: n.ID, Title: n.Title, Content: n.Content}
}

// NoteInput is the body of a create request.
type NoteInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// NotePatch is the body of an update request. Only keys carrying a value
// overwrite the stored field; a missing key or an explicit null leaves it
// unchanged.
type NotePatch struct {
	Title   Optional[string] `json:"title"`
	Content Optional[string] `json:"content"`
}

// Empty reports whether the patch supplies no values.
func (p NotePatch) Empty() bool {
	return !p.Title.Present() && !p.Content.Present()
}

// Apply merges p into n in place.
func (p NotePatch) Apply(n *Note) {
	if p.Title.Present() {
		n.Title = p.Title.Ptr()
	}
	if p.Content.Present() {
		n.Content = p.Content.Ptr()
	}
}

// NoteCount is the body of the admin note count response.
type NoteCount struct {
	Total int64 `json:"total_notes"`
}
