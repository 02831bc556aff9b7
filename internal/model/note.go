package model

// NoteSource tells how the note text was obtained.
type NoteSource string

const (
	SourceTyped NoteSource = "typed"
	SourceVoice NoteSource = "voice"
)

// Note is a single piece of text headed for the user's spreadsheet.
type Note struct {
	UserID int64
	Text   string
	Source NoteSource
}
