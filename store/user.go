package store

// User roles. Kept as small integers to match the wire format the admin
// frontend expects.
const (
	RoleStudent    = 0
	RoleInstructor = 1
	RoleAdmin      = 2
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         int
	CreatedTs    int64
	UpdatedTs    int64
}

type FindUser struct {
	ID    *string
	Email *string
	Role  *int
}

type UpdateUser struct {
	ID           string
	Email        *string
	PasswordHash *string
	FullName     *string
	Role         *int
	UpdatedTs    *int64
}

type DeleteUser struct {
	ID string
}
