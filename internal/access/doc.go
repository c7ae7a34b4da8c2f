// Package access decides who may mutate stage cards. The gate runs before
// any store mutation, so a denial never leaves partial state behind.
package access
