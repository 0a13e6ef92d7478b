// Package textutil holds string helpers for turning user input into safe
// filesystem names.
package textutil
