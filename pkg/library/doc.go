// Package library manages saved prompts and wildcard lists.
//
// The Service validates and stamps records before handing them to a
// ports.LibraryStore, and serialises writes to the same record with a local
// mutex and, optionally, a distributed lock.
package library
