package entity

// Post is a piece of content written by an active user.
type Post struct {
	ID         int64
	Content    string
	CreatedAt  int64  // epoch millis, UTC
	ModifiedAt *int64 // nil until the first update
	Writer     *User
}

type PostCreate struct {
	WriterID int64  `json:"writerId" validate:"required,gt=0"`
	Content  string `json:"content" validate:"required,notblank,max=10000"`
}

type PostUpdate struct {
	Content string `json:"content" validate:"required,notblank,max=10000"`
}

func NewPost(in PostCreate, writer *User, nowMillis int64) *Post {
	return &Post{
		Content:   in.Content,
		CreatedAt: nowMillis,
		Writer:    writer,
	}
}

// Update returns a copy with new content; id, creation time and writer are kept.
func (p *Post) Update(in PostUpdate, nowMillis int64) *Post {
	return &Post{
		ID:         p.ID,
		Content:    in.Content,
		CreatedAt:  p.CreatedAt,
		ModifiedAt: &nowMillis,
		Writer:     p.Writer,
	}
}
