package flatfile

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/LukasKalbertodt/grakawa/core"
)

// Reserved file names inside the storage root and product directories
const (
	lockFileName   = ".lock"
	indexFileName  = "index.json"
	pricesFileName = "prices.json"

	productDirPrefix = "p"
	productDirDigits = 9
)

// productDirName returns the directory name of a product.
// Format: p + nine zero-padded decimal digits, so names sort numerically.
func productDirName(id core.ProductID) string {
	return fmt.Sprintf("%s%0*d", productDirPrefix, productDirDigits, id)
}

// parseProductDirName is the inverse of productDirName.
// ok is false for names that are not product directories.
func parseProductDirName(name string) (core.ProductID, bool) {
	if len(name) != len(productDirPrefix)+productDirDigits || name[:len(productDirPrefix)] != productDirPrefix {
		return 0, false
	}
	digits := name[len(productDirPrefix):]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	id := core.ProductID(v)
	if core.ValidateProductID(id) != nil {
		return 0, false
	}
	return id, true
}

func productPath(root string, id core.ProductID) string {
	return filepath.Join(root, productDirName(id))
}
