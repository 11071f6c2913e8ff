package auth

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// LoadSeedFile reads the bundled default user list used to seed the
// registry on first run. Same shape the mobile client ships under
// assets/data/users.json.
func LoadSeedFile(path string) ([]User, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read user seed %s", path)
	}
	var users []User
	if err := json.Unmarshal(b, &users); err != nil {
		return nil, errors.Wrapf(err, "parse user seed %s", path)
	}
	return users, nil
}
