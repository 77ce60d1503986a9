package cache

import "strconv"

// Catalog key builders. Keyed per endpoint so a narrow invalidation stays
// possible, though mutations currently clear everything.

func AllProductsKey() string {
	return "products:all"
}

func NewestProductsKey(n int) string {
	return "products:newest:" + strconv.Itoa(n)
}

func CategoryProductsKey(category string, limit int) string {
	return "products:category:" + category + ":" + strconv.Itoa(limit)
}
