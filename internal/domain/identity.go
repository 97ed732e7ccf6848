package domain

// Identity is the verified principal behind a bearer credential. It lives
// for one request and is passed explicitly to every component.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (i Identity) Valid() bool { return i.ID != "" }
