// Package catalog imports products and users from CUE files.
//
// A catalog directory holds one CUE package. Entries live under two
// top-level structs keyed by product id and username:
//
//	package menu
//
//	product: P009: {
//		name:     "Teh Tarik"
//		price:    9000
//		stock:    12
//		category: "MINUMAN"
//	}
//
//	user: kasir: {
//		password: "rahasia"
//		role:     "SELLER"
//	}
//
// Each entry is unified with an embedded schema (#Product or #User) and must
// be concrete after defaults. Entries that fail are reported as *LoadError
// with the CUE source position; valid entries are still returned.
package catalog
