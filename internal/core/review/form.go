package review

// Side selects the column of a diff a comment is attached to.
type Side string

const (
	SideAdditions Side = "additions"
	SideDeletions Side = "deletions"
)

// FormMode discriminates FormState.
type FormMode int

const (
	FormClosed FormMode = iota
	FormPending
	FormEditing
)

func (m FormMode) String() string {
	switch m {
	case FormPending:
		return "pending"
	case FormEditing:
		return "editing"
	default:
		return "closed"
	}
}

// FormState is the single comment form. Side, LineNumber and StartLine are
// set only while Pending; CommentID only while Editing.
type FormState struct {
	Mode       FormMode
	Side       Side
	LineNumber int
	StartLine  int
	CommentID  string
}

// ClosedForm is the zero form.
func ClosedForm() FormState { return FormState{} }

// PendingForm opens a new-comment form at a line or range.
func PendingForm(side Side, lineNumber, startLine int) FormState {
	return FormState{Mode: FormPending, Side: side, LineNumber: lineNumber, StartLine: startLine}
}

// EditingForm opens the edit form for an existing comment.
func EditingForm(id string) FormState {
	return FormState{Mode: FormEditing, CommentID: id}
}

func (f FormState) IsOpen() bool { return f.Mode != FormClosed }
