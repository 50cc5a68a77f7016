package enotes

type SigningKey struct {
	Key string `json:"k"`
}

// User carries the stored credentials for one account. The username doubles
// as the identity every note and page is owned by.
type User struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Salt string `json:"salt"`
}

type UserRepository interface {
	Get(name string) (*User, error)
	Upsert(*User) error
}
