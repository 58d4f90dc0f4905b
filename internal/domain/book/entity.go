package book

// Copy is one physical book instance. Copies sharing an ISBN are independent;
// availability is flipped only by the rental workflow, never by catalog edits.
type Copy struct {
	id        int64
	isbn      string
	title     string
	author    string
	available bool
}

func ReconstructCopy(id int64, isbn, title, author string, available bool) *Copy {
	return &Copy{
		id:        id,
		isbn:      isbn,
		title:     title,
		author:    author,
		available: available,
	}
}

func (c *Copy) ID() int64       { return c.id }
func (c *Copy) ISBN() string    { return c.isbn }
func (c *Copy) Title() string   { return c.title }
func (c *Copy) Author() string  { return c.author }
func (c *Copy) Available() bool { return c.available }
