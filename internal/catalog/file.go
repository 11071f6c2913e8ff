package catalog

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// LoadFile reads a bundled JSON product list, the same shape the mobile
// client ships under assets/.
func LoadFile(path string) ([]Product, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", path)
	}
	var products []Product
	if err := json.Unmarshal(b, &products); err != nil {
		return nil, errors.Wrapf(err, "parse catalog %s", path)
	}
	return products, nil
}
