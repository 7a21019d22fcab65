package models

// Tag is a lightweight label attached to a note.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Note is a locally cached knowledge note.
type Note struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Markdown   string     `json:"markdown"`
	Tags       []Tag      `json:"tags"`
	UpdatedAt  int64      `json:"updatedAt"`
	SyncStatus SyncStatus `json:"syncStatus"`
}
